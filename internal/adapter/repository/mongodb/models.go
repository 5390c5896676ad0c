package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
)

type imageRefDocument struct {
	URL      string `bson:"url"`
	PublicID string `bson:"public_id"`
}

type itemDocument struct {
	ID          string           `bson:"id"`
	Name        string           `bson:"name"`
	Description string           `bson:"description"`
	Price       float64          `bson:"price"`
	Image       imageRefDocument `bson:"image"`
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Location    string             `bson:"location"`
	Category    string             `bson:"category"`
	Features    []string           `bson:"features,omitempty"`
	Images      []imageRefDocument `bson:"images,omitempty"`
	Items       []itemDocument     `bson:"items,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type vendorDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	ListingIDs []string           `bson:"listing_ids,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func toImageRefDocuments(refs []domain.ImageRef) []imageRefDocument {
	if refs == nil {
		return nil
	}
	docs := make([]imageRefDocument, 0, len(refs))
	for _, r := range refs {
		docs = append(docs, imageRefDocument{URL: r.URL, PublicID: r.PublicID})
	}
	return docs
}

func toDomainImageRefs(docs []imageRefDocument) []domain.ImageRef {
	if docs == nil {
		return nil
	}
	refs := make([]domain.ImageRef, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, domain.ImageRef{URL: d.URL, PublicID: d.PublicID})
	}
	return refs
}

func toItemDocuments(items []domain.Item) []itemDocument {
	if items == nil {
		return nil
	}
	docs := make([]itemDocument, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDocument{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Image:       imageRefDocument{URL: it.Image.URL, PublicID: it.Image.PublicID},
		})
	}
	return docs
}

func toDomainItems(docs []itemDocument) []domain.Item {
	if docs == nil {
		return nil
	}
	items := make([]domain.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.Item{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price,
			Image:       domain.ImageRef{URL: d.Image.URL, PublicID: d.Image.PublicID},
		})
	}
	return items
}

// toListingDocument leaves the id as NilObjectID when the domain id is
// empty, so InsertOne makes MongoDB generate one.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}

	var docID primitive.ObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing id %q: %w", l.ID, err)
		}
	}

	return &listingDocument{
		ID:          docID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Category:    l.Category,
		Features:    l.Features,
		Images:      toImageRefDocuments(l.Images),
		Items:       toItemDocuments(l.Items),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	return &domain.Listing{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Location:    d.Location,
		Category:    d.Category,
		Features:    d.Features,
		Images:      toDomainImageRefs(d.Images),
		Items:       toDomainItems(d.Items),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	if docs == nil {
		return nil
	}
	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, toDomainListing(doc))
	}
	return listings
}

func toDomainVendor(d *vendorDocument) *domain.Vendor {
	if d == nil {
		return nil
	}
	return &domain.Vendor{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		Name:       d.Name,
		Email:      d.Email,
		ListingIDs: d.ListingIDs,
		CreatedAt:  d.CreatedAt,
	}
}
