package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// VendorRepository reads the vendor records owned by the user service and
// maintains the listing back-reference list.
type VendorRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewVendorRepository(db *mongo.Database, log *logger.Logger) *VendorRepository {
	return &VendorRepository{
		collection: db.Collection("vendors"),
		logger:     log.Named("vendor-repo"),
	}
}

func (r *VendorRepository) FindByID(ctx context.Context, id string) (*domain.Vendor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVendorNotFound
	}

	var doc vendorDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, err
	}
	return toDomainVendor(&doc), nil
}

func (r *VendorRepository) FindByUserID(ctx context.Context, userID string) (*domain.Vendor, error) {
	var doc vendorDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, err
	}
	return toDomainVendor(&doc), nil
}

func (r *VendorRepository) AddListing(ctx context.Context, vendorID, listingID string) error {
	oid, err := primitive.ObjectIDFromHex(vendorID)
	if err != nil {
		return domain.ErrVendorNotFound
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"listing_ids": listingID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}

func (r *VendorRepository) RemoveListing(ctx context.Context, vendorID, listingID string) error {
	oid, err := primitive.ObjectIDFromHex(vendorID)
	if err != nil {
		return domain.ErrVendorNotFound
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{
		"$pull": bson.M{"listing_ids": listingID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}
