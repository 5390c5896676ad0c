package domain

import "context"

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, int64, error)
}

type VendorRepository interface {
	FindByID(ctx context.Context, id string) (*Vendor, error)
	FindByUserID(ctx context.Context, userID string) (*Vendor, error)
	AddListing(ctx context.Context, vendorID, listingID string) error
	RemoveListing(ctx context.Context, vendorID, listingID string) error
}

// ObjectStorage is the media store as the core needs it: uploads create
// independently addressable objects, Remove destroys exactly one by its
// public id and is safe to repeat. Nothing here is transactional with the
// document store.
type ObjectStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (ImageRef, error)
	Remove(ctx context.Context, publicID string) error
}
