package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImagePublicIDs(t *testing.T) {
	listing := &Listing{
		Images: []ImageRef{
			{URL: "u1", PublicID: "p1"},
			{URL: "orphan-url"},
			{URL: "u2", PublicID: " p2 "},
		},
		Items: []Item{
			{ID: "i1", Image: ImageRef{URL: "u3", PublicID: "pi1"}},
			{ID: "i2"},
		},
	}

	assert.Equal(t, []string{"p1", "p2", "pi1"}, listing.ImagePublicIDs())
}

func TestStagedUploadsAll(t *testing.T) {
	staged := StagedUploads{
		ImageIDs:     []string{"a", " b ", "", "a"},
		ItemImageIDs: []string{"b", "c"},
	}

	assert.Equal(t, []string{"a", "b", "c"}, staged.All())
	assert.False(t, staged.IsEmpty())
	assert.True(t, StagedUploads{ImageIDs: []string{" ", ""}}.IsEmpty())
}

func TestInvalidInputError(t *testing.T) {
	err := NewInvalidInput("title", "is required")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "title")
}

func TestImageRefIsPresent(t *testing.T) {
	assert.True(t, ImageRef{PublicID: "p1"}.IsPresent())
	assert.False(t, ImageRef{URL: "only-url"}.IsPresent())
	assert.False(t, ImageRef{PublicID: "   "}.IsPresent())
}
