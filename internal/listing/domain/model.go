package domain

import (
	"strings"
	"time"
)

// ImageRef points at one object in the media store. PublicID is the only
// key the store understands; URL is derived and used for display only.
type ImageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// IsPresent reports whether the ref actually names a stored object.
func (r ImageRef) IsPresent() bool {
	return strings.TrimSpace(r.PublicID) != ""
}

// Item is a sub-offering of a Listing (a service the vendor sells as part
// of it). Items have no lifecycle of their own; they are written and
// destroyed only as part of a Listing write.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       ImageRef `json:"image"`
}

type Listing struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Location    string     `json:"location"`
	Category    string     `json:"category"`
	Features    []string   `json:"features"`
	Images      []ImageRef `json:"images"`
	Items       []Item     `json:"items"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ImagePublicIDs collects every non-blank public id referenced by the
// listing: top-level images plus each item's image.
func (l *Listing) ImagePublicIDs() []string {
	ids := make([]string, 0, len(l.Images)+len(l.Items))
	for _, img := range l.Images {
		if img.IsPresent() {
			ids = append(ids, strings.TrimSpace(img.PublicID))
		}
	}
	for _, it := range l.Items {
		if it.Image.IsPresent() {
			ids = append(ids, strings.TrimSpace(it.Image.PublicID))
		}
	}
	return ids
}

// Vendor is the owner aggregate. Only identity, contact email and the
// back-reference list of listing ids are used by this service.
type Vendor struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ListingIDs []string  `json:"listingIds"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StagedUploads is the request-scoped record of everything the client
// uploaded to the media store in support of one create/update call,
// whether or not the request ends up referencing it. Never persisted.
type StagedUploads struct {
	ImageIDs     []string
	ItemImageIDs []string
}

// All returns the union of both id lists, trimmed, blanks dropped,
// duplicates removed.
func (s StagedUploads) All() []string {
	merged := make([]string, 0, len(s.ImageIDs)+len(s.ItemImageIDs))
	merged = append(merged, s.ImageIDs...)
	merged = append(merged, s.ItemImageIDs...)

	seen := make(map[string]struct{}, len(merged))
	out := make([]string, 0, len(merged))
	for _, id := range merged {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IsEmpty reports whether nothing was staged for this request.
func (s StagedUploads) IsEmpty() bool {
	return len(s.All()) == 0
}

// Filter narrows listing searches.
type Filter struct {
	Query    string
	MinPrice float64
	MaxPrice float64
	Category string
	Location string
	OwnerID  string
	Page     int64
	Limit    int64
}
