package editor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/pagedeck/internal/render"
)

func thumb() *render.Thumbnail {
	return render.NewThumbnail(image.NewRGBA(image.Rect(0, 0, 2, 2)))
}

func TestPreviewIndex_InsertRenumbers(t *testing.T) {
	p := NewPreviewIndex()
	p.Insert(0, thumb(), thumb())
	require.NoError(t, p.Select(1))

	p.Insert(1, thumb())
	require.Equal(t, []string{"Page 1", "Page 2", "Page 3"}, p.Labels())
	sel, ok := p.Selected()
	require.True(t, ok)
	require.Equal(t, 2, sel)

	p.Insert(3, thumb())
	sel, _ = p.Selected()
	require.Equal(t, 2, sel)
	e, _ := p.Entry(2)
	require.True(t, e.Selected)
}

func TestPreviewIndex_RemoveReleasesThumbnails(t *testing.T) {
	p := NewPreviewIndex()
	thumbs := []*render.Thumbnail{thumb(), thumb(), thumb(), thumb()}
	p.Insert(0, thumbs...)
	require.NoError(t, p.Select(3))

	p.Remove(1, 2)
	require.Equal(t, []string{"Page 1", "Page 2"}, p.Labels())
	require.True(t, thumbs[1].Released())
	require.True(t, thumbs[2].Released())
	require.False(t, thumbs[3].Released())
	_, ok := p.Selected()
	require.False(t, ok)
	for _, e := range p.Entries() {
		require.False(t, e.Selected)
	}

	p.Remove(1, 5)
	require.Equal(t, 2, p.Len())
}

func TestPreviewIndex_ReplaceReleasesOld(t *testing.T) {
	p := NewPreviewIndex()
	old := thumb()
	p.Insert(0, old)
	next := thumb()
	p.Replace(0, next)
	require.True(t, old.Released())
	e, _ := p.Entry(0)
	require.Same(t, next, e.Thumb)

	stray := thumb()
	p.Replace(4, stray)
	require.True(t, stray.Released())
}

func TestPreviewIndex_SelectIsExclusive(t *testing.T) {
	p := NewPreviewIndex()
	p.Insert(0, thumb(), thumb(), thumb())
	require.NoError(t, p.Select(0))
	require.NoError(t, p.Select(2))
	require.Error(t, p.Select(-1))

	count := 0
	for _, e := range p.Entries() {
		if e.Selected {
			count++
		}
	}
	require.Equal(t, 1, count)

	p.Clear()
	require.Equal(t, 0, p.Len())
	_, ok := p.Selected()
	require.False(t, ok)
}

func TestPreviewIndex_PlaceOrdersByPage(t *testing.T) {
	p := NewPreviewIndex()
	p.place(2, thumb())
	p.place(0, thumb())
	p.fill(4)

	require.Equal(t, []string{"Page 1", "Page 2", "Page 3", "Page 4"}, p.Labels())
	entries := p.Entries()
	require.NotNil(t, entries[0].Thumb)
	require.Nil(t, entries[1].Thumb)
	require.NotNil(t, entries[2].Thumb)
	require.Nil(t, entries[3].Thumb)
}
