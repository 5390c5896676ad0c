// Package media keeps listing images consistent between the listing
// document and the object store. The reconciler computes which object ids
// a write has stranded; the cleaner removes them in paced batches.
package media

import (
	"sort"
	"strings"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
)

// Orphans returns staged − used: every id the client staged for this
// request that the listing being persisted does not reference. Blank ids
// are dropped, the result is deduplicated and sorted for determinism.
func Orphans(staged domain.StagedUploads, used ...[]domain.ImageRef) []string {
	inUse := make(map[string]struct{})
	for _, refs := range used {
		for _, ref := range refs {
			if ref.IsPresent() {
				inUse[strings.TrimSpace(ref.PublicID)] = struct{}{}
			}
		}
	}

	var orphans []string
	for _, id := range staged.All() {
		if _, ok := inUse[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// ItemImages lifts each item's image into a ref slice so item images can
// be passed to Orphans alongside the top-level images.
func ItemImages(items []domain.Item) []domain.ImageRef {
	refs := make([]domain.ImageRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, it.Image)
	}
	return refs
}

// Retired returns the subset of previous whose public id appears in
// removeIDs. Used for explicit top-level image removals: only ids that
// actually belong to the listing come back, so a stray id in the request
// cannot reach the object store.
func Retired(previous []domain.ImageRef, removeIDs []string) []string {
	requested := make(map[string]struct{}, len(removeIDs))
	for _, id := range removeIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			requested[id] = struct{}{}
		}
	}

	var retired []string
	seen := make(map[string]struct{})
	for _, ref := range previous {
		if !ref.IsPresent() {
			continue
		}
		id := strings.TrimSpace(ref.PublicID)
		if _, ok := requested[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		retired = append(retired, id)
	}
	sort.Strings(retired)
	return retired
}

// RetiredItemImage reports the previous item image to delete when an item
// survives an update with a different image. The old id is retired when
// the new item carries a different public id, or no image at all. An
// unchanged id retires nothing.
func RetiredItemImage(previous, next domain.ImageRef) (string, bool) {
	if !previous.IsPresent() {
		return "", false
	}
	prevID := strings.TrimSpace(previous.PublicID)
	if strings.TrimSpace(next.PublicID) == prevID {
		return "", false
	}
	return prevID, true
}

// WithoutPublicIDs filters refs whose public id is in remove. Keeps order.
func WithoutPublicIDs(refs []domain.ImageRef, remove []string) []domain.ImageRef {
	drop := make(map[string]struct{}, len(remove))
	for _, id := range remove {
		drop[strings.TrimSpace(id)] = struct{}{}
	}

	kept := make([]domain.ImageRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := drop[strings.TrimSpace(ref.PublicID)]; ok {
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}
