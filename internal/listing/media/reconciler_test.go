package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
)

func ref(id string) domain.ImageRef {
	return domain.ImageRef{URL: "https://cdn.example.com/" + id, PublicID: id}
}

func TestOrphans(t *testing.T) {
	t.Run("staged minus used", func(t *testing.T) {
		staged := domain.StagedUploads{
			ImageIDs:     []string{"p1", "p2"},
			ItemImageIDs: []string{"p3"},
		}
		used := []domain.ImageRef{ref("p1"), ref("p3")}

		orphans := Orphans(staged, used)

		assert.Equal(t, []string{"p2"}, orphans)
	})

	t.Run("everything used leaves nothing", func(t *testing.T) {
		staged := domain.StagedUploads{ImageIDs: []string{"a", "b"}}
		orphans := Orphans(staged, []domain.ImageRef{ref("a")}, []domain.ImageRef{ref("b")})
		assert.Empty(t, orphans)
	})

	t.Run("nothing staged leaves nothing", func(t *testing.T) {
		orphans := Orphans(domain.StagedUploads{}, []domain.ImageRef{ref("a")})
		assert.Empty(t, orphans)
	})

	t.Run("blanks and duplicates dropped", func(t *testing.T) {
		staged := domain.StagedUploads{
			ImageIDs:     []string{" x ", "", "x"},
			ItemImageIDs: []string{"y", "y"},
		}
		orphans := Orphans(staged)
		assert.Equal(t, []string{"x", "y"}, orphans)
	})

	t.Run("id reused across image groups is kept", func(t *testing.T) {
		staged := domain.StagedUploads{ImageIDs: []string{"shared"}}
		orphans := Orphans(staged, nil, []domain.ImageRef{ref("shared")})
		assert.Empty(t, orphans)
	})

	t.Run("result is sorted", func(t *testing.T) {
		staged := domain.StagedUploads{ImageIDs: []string{"z", "a", "m"}}
		assert.Equal(t, []string{"a", "m", "z"}, Orphans(staged))
	})
}

func TestItemImages(t *testing.T) {
	items := []domain.Item{
		{ID: "i1", Image: ref("p1")},
		{ID: "i2"},
	}
	refs := ItemImages(items)
	require.Len(t, refs, 2)
	assert.Equal(t, "p1", refs[0].PublicID)
	assert.False(t, refs[1].IsPresent())
}

func TestRetired(t *testing.T) {
	previous := []domain.ImageRef{ref("p1"), ref("p2"), ref("p3")}

	t.Run("only ids on the listing are retired", func(t *testing.T) {
		retired := Retired(previous, []string{"p2", "stranger"})
		assert.Equal(t, []string{"p2"}, retired)
	})

	t.Run("empty request retires nothing", func(t *testing.T) {
		assert.Empty(t, Retired(previous, nil))
	})

	t.Run("blank ids are ignored", func(t *testing.T) {
		assert.Empty(t, Retired(previous, []string{"", "  "}))
	})

	t.Run("duplicate refs retire once", func(t *testing.T) {
		dup := []domain.ImageRef{ref("p1"), ref("p1")}
		assert.Equal(t, []string{"p1"}, Retired(dup, []string{"p1"}))
	})
}

func TestRetiredItemImage(t *testing.T) {
	t.Run("replaced image retires the old id", func(t *testing.T) {
		id, retired := RetiredItemImage(ref("old"), ref("new"))
		assert.True(t, retired)
		assert.Equal(t, "old", id)
	})

	t.Run("removed image retires the old id", func(t *testing.T) {
		id, retired := RetiredItemImage(ref("old"), domain.ImageRef{})
		assert.True(t, retired)
		assert.Equal(t, "old", id)
	})

	t.Run("unchanged image retires nothing", func(t *testing.T) {
		_, retired := RetiredItemImage(ref("same"), ref("same"))
		assert.False(t, retired)
	})

	t.Run("previously empty image retires nothing", func(t *testing.T) {
		_, retired := RetiredItemImage(domain.ImageRef{}, ref("new"))
		assert.False(t, retired)
	})
}

func TestWithoutPublicIDs(t *testing.T) {
	refs := []domain.ImageRef{ref("p1"), ref("p2"), ref("p3")}

	kept := WithoutPublicIDs(refs, []string{"p2"})

	require.Len(t, kept, 2)
	assert.Equal(t, "p1", kept[0].PublicID)
	assert.Equal(t, "p3", kept[1].PublicID)
}
