package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/media"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// ItemInput is one item as supplied by the client. An empty ID means a
// new item; a non-empty ID refers to an item already on the listing.
type ItemInput struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Image       domain.ImageRef `json:"image"`
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Category    string
	Features    []string
	Images      []domain.ImageRef
	Items       []ItemInput
	Staged      domain.StagedUploads
}

// UpdateListingInput has pointer fields for the scalars so an omitted
// field is distinguishable from an explicit zero. Images are additive;
// Items, when present, fully replace the items collection.
type UpdateListingInput struct {
	ListingID          string
	Title              *string
	Description        *string
	Price              *float64
	Location           *string
	Category           *string
	Features           *[]string
	Images             []domain.ImageRef
	Items              *[]ItemInput
	ImagesToDelete     []string
	ItemImagesToDelete []string
	Staged             domain.StagedUploads
}

// ListingUsecase sequences validation, reconciliation, persistence and
// media cleanup for the listing lifecycle. Cleanup after a successful
// persist is best-effort: its failures are logged, never surfaced.
type ListingUsecase struct {
	listings domain.ListingRepository
	vendors  domain.VendorRepository
	cleaner  *media.Cleaner
	logger   *logger.Logger
}

func NewListingUsecase(listings domain.ListingRepository, vendors domain.VendorRepository, cleaner *media.Cleaner, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		listings: listings,
		vendors:  vendors,
		cleaner:  cleaner,
		logger:   log.Named("listing-usecase"),
	}
}

// sweepStaged removes every staged upload after a rejected request, so a
// failed create/update never strands objects in the store. Its own
// failures are logged inside the cleaner and swallowed here.
func (uc *ListingUsecase) sweepStaged(ctx context.Context, staged domain.StagedUploads, reason string) {
	if staged.IsEmpty() {
		return
	}
	uc.logger.Info("sweeping staged uploads after rejected request",
		zap.String("reason", reason), zap.Int("count", len(staged.All())))
	uc.cleaner.DeleteAll(ctx, staged.All())
}

func validateCreate(in CreateListingInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return domain.NewInvalidInput("title", "is required")
	case strings.TrimSpace(in.Description) == "":
		return domain.NewInvalidInput("description", "is required")
	case in.Price < 0:
		return domain.NewInvalidInput("price", "must not be negative")
	case strings.TrimSpace(in.Category) == "":
		return domain.NewInvalidInput("category", "is required")
	case len(in.Images) == 0:
		return domain.NewInvalidInput("images", "must not be empty")
	}
	for _, it := range in.Items {
		if it.Price < 0 {
			return domain.NewInvalidInput("items.price", "must not be negative")
		}
	}
	return nil
}

// normalizeItems keeps the persisted item shape uniform: every item gets
// an id, a description (possibly empty) and an image ref (possibly the
// empty placeholder).
func normalizeItems(inputs []ItemInput) []domain.Item {
	items := make([]domain.Item, 0, len(inputs))
	for _, in := range inputs {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = uuid.New().String()
		}
		items = append(items, domain.Item{
			ID:          id,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Price:       in.Price,
			Image:       in.Image,
		})
	}
	return items
}

// Create persists a new listing for the caller's vendor, then sweeps
// every staged upload the persisted document does not reference.
func (uc *ListingUsecase) Create(ctx context.Context, userID string, in CreateListingInput) (*domain.Listing, error) {
	if userID == "" {
		uc.sweepStaged(ctx, in.Staged, "unauthenticated")
		return nil, domain.ErrUnauthenticated
	}

	vendor, err := uc.vendors.FindByUserID(ctx, userID)
	if err != nil {
		uc.sweepStaged(ctx, in.Staged, "vendor lookup failed")
		if errors.Is(err, domain.ErrVendorNotFound) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, fmt.Errorf("resolve vendor for user %s: %w", userID, err)
	}

	if err := validateCreate(in); err != nil {
		uc.sweepStaged(ctx, in.Staged, "validation failed")
		return nil, err
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		OwnerID:     vendor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Location:    strings.TrimSpace(in.Location),
		Category:    strings.TrimSpace(in.Category),
		Features:    in.Features,
		Images:      in.Images,
		Items:       normalizeItems(in.Items),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		uc.logger.Error("failed to create listing", zap.String("vendor_id", vendor.ID), zap.Error(err))
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if err := uc.vendors.AddListing(ctx, vendor.ID, listing.ID); err != nil {
		// The listing exists; a broken back-reference is recoverable and
		// not worth failing the request over.
		uc.logger.Warn("failed to append listing to vendor",
			zap.String("vendor_id", vendor.ID), zap.String("listing_id", listing.ID), zap.Error(err))
	}

	orphans := media.Orphans(in.Staged, listing.Images, media.ItemImages(listing.Items))
	uc.cleaner.DeleteAll(ctx, orphans)

	uc.logger.Info("listing created",
		zap.String("listing_id", listing.ID),
		zap.String("vendor_id", vendor.ID),
		zap.Int("orphans_swept", len(orphans)))
	return listing, nil
}

// Update applies a partial update. Object deletions earned along the way
// (explicit removals, replaced item images, staged orphans) are collected
// into one set and handed to the cleaner once, after the document is
// safely persisted without them.
func (uc *ListingUsecase) Update(ctx context.Context, userID string, in UpdateListingInput) (*domain.Listing, error) {
	if userID == "" {
		uc.sweepStaged(ctx, in.Staged, "unauthenticated")
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.ListingID) == "" {
		uc.sweepStaged(ctx, in.Staged, "missing listing id")
		return nil, domain.NewInvalidInput("listingId", "is required")
	}

	listing, err := uc.listings.FindByID(ctx, in.ListingID)
	if err != nil {
		uc.sweepStaged(ctx, in.Staged, "listing lookup failed")
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("load listing %s: %w", in.ListingID, err)
	}

	vendor, err := uc.vendors.FindByUserID(ctx, userID)
	if err != nil {
		uc.sweepStaged(ctx, in.Staged, "vendor lookup failed")
		if errors.Is(err, domain.ErrVendorNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("resolve vendor for user %s: %w", userID, err)
	}
	if listing.OwnerID != vendor.ID {
		uc.logger.Warn("update forbidden",
			zap.String("listing_id", listing.ID),
			zap.String("owner_id", listing.OwnerID),
			zap.String("caller_vendor_id", vendor.ID))
		uc.sweepStaged(ctx, in.Staged, "ownership mismatch")
		return nil, domain.ErrForbidden
	}

	// Everything scheduled for deletion is deferred to a single cleaner
	// call after the persist, so the document never references an object
	// this request has already destroyed.
	var pending []string

	retired := media.Retired(listing.Images, in.ImagesToDelete)
	pending = append(pending, retired...)
	listing.Images = media.WithoutPublicIDs(listing.Images, retired)

	// Item image removals are cross-checked against the listing's actual
	// items; ids that do not belong to it are ignored.
	pending = append(pending, media.Retired(media.ItemImages(listing.Items), in.ItemImagesToDelete)...)

	for _, ref := range in.Images {
		if ref.IsPresent() {
			listing.Images = append(listing.Images, ref)
		}
	}

	if in.Items != nil {
		previous := make(map[string]domain.Item, len(listing.Items))
		for _, it := range listing.Items {
			previous[it.ID] = it
		}
		for _, next := range *in.Items {
			prev, ok := previous[strings.TrimSpace(next.ID)]
			if !ok {
				continue
			}
			if retiredID, replaced := media.RetiredItemImage(prev.Image, next.Image); replaced {
				pending = append(pending, retiredID)
			}
		}
		listing.Items = normalizeItems(*in.Items)
	}

	if in.Title != nil {
		listing.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			uc.sweepStaged(ctx, in.Staged, "validation failed")
			return nil, domain.NewInvalidInput("price", "must not be negative")
		}
		listing.Price = *in.Price
	}
	if in.Location != nil {
		listing.Location = strings.TrimSpace(*in.Location)
	}
	if in.Category != nil {
		listing.Category = strings.TrimSpace(*in.Category)
	}
	if in.Features != nil {
		listing.Features = *in.Features
	}
	listing.UpdatedAt = time.Now().UTC()

	if err := uc.listings.Update(ctx, listing); err != nil {
		uc.logger.Error("failed to update listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return nil, fmt.Errorf("update listing %s: %w", listing.ID, err)
	}

	orphans := media.Orphans(in.Staged, listing.Images, media.ItemImages(listing.Items))
	pending = append(pending, orphans...)
	uc.cleaner.DeleteAll(ctx, pending)

	uc.logger.Info("listing updated",
		zap.String("listing_id", listing.ID),
		zap.Int("objects_cleaned", len(pending)))
	return listing, nil
}

// Delete removes the listing's media first and the document second. A
// crash in between leaves a listing whose images are gone; that is the
// accepted ordering, the reverse would strand unreferenced objects with
// nothing left pointing at them.
func (uc *ListingUsecase) Delete(ctx context.Context, userID, listingID string) (string, error) {
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	if strings.TrimSpace(listingID) == "" {
		return "", domain.NewInvalidInput("listingId", "is required")
	}

	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return "", domain.ErrListingNotFound
		}
		return "", fmt.Errorf("load listing %s: %w", listingID, err)
	}

	vendor, err := uc.vendors.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrVendorNotFound) {
			return "", domain.ErrForbidden
		}
		return "", fmt.Errorf("resolve vendor for user %s: %w", userID, err)
	}
	if listing.OwnerID != vendor.ID {
		uc.logger.Warn("delete forbidden",
			zap.String("listing_id", listing.ID),
			zap.String("owner_id", listing.OwnerID),
			zap.String("caller_vendor_id", vendor.ID))
		return "", domain.ErrForbidden
	}

	uc.cleaner.DeleteAll(ctx, listing.ImagePublicIDs())

	if err := uc.listings.Delete(ctx, listing.ID); err != nil {
		uc.logger.Error("failed to delete listing record", zap.String("listing_id", listing.ID), zap.Error(err))
		return "", fmt.Errorf("delete listing %s: %w", listing.ID, err)
	}

	if err := uc.vendors.RemoveListing(ctx, vendor.ID, listing.ID); err != nil {
		uc.logger.Warn("failed to remove listing from vendor",
			zap.String("vendor_id", vendor.ID), zap.String("listing_id", listing.ID), zap.Error(err))
	}

	uc.logger.Info("listing deleted", zap.String("listing_id", listing.ID), zap.String("vendor_id", vendor.ID))
	return listing.ID, nil
}

func (uc *ListingUsecase) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("load listing %s: %w", id, err)
	}
	return listing, nil
}

func (uc *ListingUsecase) Search(ctx context.Context, filter domain.Filter) ([]*domain.Listing, int64, error) {
	listings, total, err := uc.listings.FindByFilter(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}
	return listings, total, nil
}
