package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/media"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// harness wires the usecase against in-memory fakes. events records the
// order of persistence and storage operations across the whole test.
type harness struct {
	uc       *ListingUsecase
	listings *memListingRepo
	vendors  *memVendorRepo
	storage  *memStorage
	events   *eventLog
}

type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (e *eventLog) add(entry string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
}

func (e *eventLog) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.entries...)
}

type memListingRepo struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]domain.Listing
	events *eventLog
}

func (r *memListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	listing.ID = fmt.Sprintf("listing-%d", r.seq)
	r.byID[listing.ID] = *listing
	r.events.add("repo.create:" + listing.ID)
	return nil
}

func (r *memListingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[listing.ID]; !ok {
		return domain.ErrListingNotFound
	}
	r.byID[listing.ID] = *listing
	r.events.add("repo.update:" + listing.ID)
	return nil
}

func (r *memListingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.byID, id)
	r.events.add("repo.delete:" + id)
	return nil
}

func (r *memListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	copied := l
	return &copied, nil
}

func (r *memListingRepo) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Listing
	for _, l := range r.byID {
		copied := l
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type memVendorRepo struct {
	mu       sync.Mutex
	byUserID map[string]domain.Vendor
	added    []string
	removed  []string
}

func (r *memVendorRepo) FindByID(ctx context.Context, id string) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.byUserID {
		if v.ID == id {
			copied := v
			return &copied, nil
		}
	}
	return nil, domain.ErrVendorNotFound
}

func (r *memVendorRepo) FindByUserID(ctx context.Context, userID string) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byUserID[userID]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	copied := v
	return &copied, nil
}

func (r *memVendorRepo) AddListing(ctx context.Context, vendorID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, vendorID+":"+listingID)
	return nil
}

func (r *memVendorRepo) RemoveListing(ctx context.Context, vendorID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, vendorID+":"+listingID)
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	removed []string
	events  *eventLog
}

func (s *memStorage) Upload(ctx context.Context, fileName string, data []byte) (domain.ImageRef, error) {
	return domain.ImageRef{}, nil
}

func (s *memStorage) Remove(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, publicID)
	s.events.add("storage.remove:" + publicID)
	return nil
}

func (s *memStorage) removedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	events := &eventLog{}
	listings := &memListingRepo{byID: map[string]domain.Listing{}, events: events}
	vendors := &memVendorRepo{byUserID: map[string]domain.Vendor{
		"user-1": {ID: "vendor-1", UserID: "user-1", Email: "owner@example.com"},
		"user-2": {ID: "vendor-2", UserID: "user-2"},
	}}
	storage := &memStorage{events: events}
	cleaner := media.NewCleaner(storage, logger.NewNop(), nil, media.CleanerConfig{
		BatchSize:  10,
		BatchDelay: time.Millisecond,
	})
	return &harness{
		uc:       NewListingUsecase(listings, vendors, cleaner, logger.NewNop()),
		listings: listings,
		vendors:  vendors,
		storage:  storage,
		events:   events,
	}
}

func ref(id string) domain.ImageRef {
	return domain.ImageRef{URL: "https://cdn.example.com/" + id, PublicID: id}
}

func validCreateInput() CreateListingInput {
	return CreateListingInput{
		Title:       "Wedding photography",
		Description: "Full day coverage",
		Price:       1200,
		Category:    "photography",
		Location:    "Almaty",
		Images:      []domain.ImageRef{ref("p1")},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and sweeps unused staged uploads", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Staged = domain.StagedUploads{ImageIDs: []string{"p1", "p2"}}

		listing, err := h.uc.Create(ctx, "user-1", in)

		require.NoError(t, err)
		assert.Equal(t, "vendor-1", listing.OwnerID)
		assert.NotEmpty(t, listing.ID)
		// p1 is referenced by the listing, only p2 is an orphan.
		assert.Equal(t, []string{"p2"}, h.storage.removedIDs())
		assert.Contains(t, h.vendors.added, "vendor-1:"+listing.ID)
	})

	t.Run("unauthenticated sweeps everything staged", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Staged = domain.StagedUploads{ImageIDs: []string{"a"}, ItemImageIDs: []string{"b"}}

		_, err := h.uc.Create(ctx, "", in)

		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.ElementsMatch(t, []string{"a", "b"}, h.storage.removedIDs())
		assert.Empty(t, h.listings.byID)
	})

	t.Run("validation failure sweeps everything staged", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Title = "  "
		in.Staged = domain.StagedUploads{ImageIDs: []string{"a", "b"}}

		_, err := h.uc.Create(ctx, "user-1", in)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ElementsMatch(t, []string{"a", "b"}, h.storage.removedIDs())
		assert.Empty(t, h.listings.byID)
	})

	t.Run("rejects a listing without images", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Images = nil

		_, err := h.uc.Create(ctx, "user-1", in)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects negative item price", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Items = []ItemInput{{Name: "album", Price: -1}}

		_, err := h.uc.Create(ctx, "user-1", in)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown user sweeps staged and reports vendor not found", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Staged = domain.StagedUploads{ImageIDs: []string{"a"}}

		_, err := h.uc.Create(ctx, "user-unknown", in)

		assert.ErrorIs(t, err, domain.ErrVendorNotFound)
		assert.Equal(t, []string{"a"}, h.storage.removedIDs())
	})

	t.Run("new items receive generated ids", func(t *testing.T) {
		h := newHarness(t)
		in := validCreateInput()
		in.Items = []ItemInput{{Name: "album", Price: 50, Image: ref("pi1")}}
		in.Staged = domain.StagedUploads{ItemImageIDs: []string{"pi1"}}

		listing, err := h.uc.Create(ctx, "user-1", in)

		require.NoError(t, err)
		require.Len(t, listing.Items, 1)
		assert.NotEmpty(t, listing.Items[0].ID)
		// The item references pi1, so nothing is swept.
		assert.Empty(t, h.storage.removedIDs())
	})
}

func seedListing(t *testing.T, h *harness) *domain.Listing {
	t.Helper()
	in := validCreateInput()
	in.Images = []domain.ImageRef{ref("p1"), ref("p2")}
	in.Items = []ItemInput{{ID: "item-1", Name: "album", Price: 50, Image: ref("pi1")}}
	listing, err := h.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	// Forget anything create swept so update assertions start clean.
	h.storage.removed = nil
	h.events.entries = nil
	return listing
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update preserves untouched fields", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)
		newPrice := 1500.0

		updated, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID: seeded.ID,
			Price:     &newPrice,
		})

		require.NoError(t, err)
		assert.Equal(t, 1500.0, updated.Price)
		assert.Equal(t, seeded.Title, updated.Title)
		assert.Equal(t, seeded.Images, updated.Images)
		assert.Len(t, updated.Items, 1)
		assert.Empty(t, h.storage.removedIDs())
	})

	t.Run("explicit removal retires only ids the listing owns", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		updated, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID:      seeded.ID,
			ImagesToDelete: []string{"p2", "stranger"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"p2"}, h.storage.removedIDs())
		require.Len(t, updated.Images, 1)
		assert.Equal(t, "p1", updated.Images[0].PublicID)
	})

	t.Run("deletions happen only after the document persists", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		_, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID:      seeded.ID,
			ImagesToDelete: []string{"p2"},
		})

		require.NoError(t, err)
		events := h.events.all()
		require.Len(t, events, 2)
		assert.Equal(t, "repo.update:"+seeded.ID, events[0])
		assert.Equal(t, "storage.remove:p2", events[1])
	})

	t.Run("replaced item image retires the old id", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		items := []ItemInput{{ID: "item-1", Name: "album", Price: 50, Image: ref("pi2")}}
		updated, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID: seeded.ID,
			Items:     &items,
			Staged:    domain.StagedUploads{ItemImageIDs: []string{"pi2"}},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"pi1"}, h.storage.removedIDs())
		require.Len(t, updated.Items, 1)
		assert.Equal(t, "pi2", updated.Items[0].Image.PublicID)
	})

	t.Run("unchanged item image retires nothing", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		items := []ItemInput{{ID: "item-1", Name: "renamed album", Price: 60, Image: ref("pi1")}}
		_, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID: seeded.ID,
			Items:     &items,
		})

		require.NoError(t, err)
		assert.Empty(t, h.storage.removedIDs())
	})

	t.Run("item image removal is cross-checked against the listing", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		_, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID:          seeded.ID,
			ItemImagesToDelete: []string{"pi1", "not-on-listing"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"pi1"}, h.storage.removedIDs())
	})

	t.Run("new images are additive and staged orphans are swept", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		updated, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID: seeded.ID,
			Images:    []domain.ImageRef{ref("p3")},
			Staged:    domain.StagedUploads{ImageIDs: []string{"p3", "abandoned"}},
		})

		require.NoError(t, err)
		assert.Len(t, updated.Images, 3)
		assert.Equal(t, []string{"abandoned"}, h.storage.removedIDs())
	})

	t.Run("non-owner is forbidden and staged uploads are swept", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)
		title := "hijacked"

		_, err := h.uc.Update(ctx, "user-2", UpdateListingInput{
			ListingID: seeded.ID,
			Title:     &title,
			Staged:    domain.StagedUploads{ImageIDs: []string{"x"}},
		})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, []string{"x"}, h.storage.removedIDs())
		stored, findErr := h.listings.FindByID(ctx, seeded.ID)
		require.NoError(t, findErr)
		assert.Equal(t, seeded.Title, stored.Title)
	})

	t.Run("unknown listing sweeps staged uploads", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID: "missing",
			Staged:    domain.StagedUploads{ImageIDs: []string{"x"}},
		})

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
		assert.Equal(t, []string{"x"}, h.storage.removedIDs())
	})

	t.Run("negative price is rejected before persisting", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)
		bad := -5.0

		_, err := h.uc.Update(ctx, "user-1", UpdateListingInput{
			ListingID: seeded.ID,
			Price:     &bad,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		stored, findErr := h.listings.FindByID(ctx, seeded.ID)
		require.NoError(t, findErr)
		assert.Equal(t, seeded.Price, stored.Price)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes media before the record", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		deletedID, err := h.uc.Delete(ctx, "user-1", seeded.ID)

		require.NoError(t, err)
		assert.Equal(t, seeded.ID, deletedID)
		assert.ElementsMatch(t, []string{"p1", "p2", "pi1"}, h.storage.removedIDs())

		events := h.events.all()
		require.NotEmpty(t, events)
		assert.Equal(t, "repo.delete:"+seeded.ID, events[len(events)-1])

		_, findErr := h.listings.FindByID(ctx, seeded.ID)
		assert.ErrorIs(t, findErr, domain.ErrListingNotFound)
		assert.Contains(t, h.vendors.removed, "vendor-1:"+seeded.ID)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		_, err := h.uc.Delete(ctx, "user-2", seeded.ID)

		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Empty(t, h.storage.removedIDs())
		_, findErr := h.listings.FindByID(ctx, seeded.ID)
		assert.NoError(t, findErr)
	})

	t.Run("unknown listing", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.Delete(ctx, "user-1", "missing")

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := newHarness(t)
		seeded := seedListing(t, h)

		_, err := h.uc.Delete(ctx, "", seeded.ID)

		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
