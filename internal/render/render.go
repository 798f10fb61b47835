// Package render turns document pages into bounded-size thumbnails.
package render

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/five82/pagedeck/internal/document"
)

const (
	DefaultMaxWidth  = 280
	DefaultMaxHeight = 380
	DefaultDPI       = 96
)

// Thumbnail is an owned bitmap of one page. Release drops the pixels once the
// preview entry holding it is replaced or removed.
type Thumbnail struct {
	img *image.RGBA
}

// NewThumbnail wraps an already-scaled bitmap.
func NewThumbnail(img *image.RGBA) *Thumbnail {
	return &Thumbnail{img: img}
}

// Image returns the pixels, or nil after Release.
func (t *Thumbnail) Image() *image.RGBA {
	if t == nil {
		return nil
	}
	return t.img
}

// Size returns the bitmap dimensions.
func (t *Thumbnail) Size() (int, int) {
	if t == nil || t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

func (t *Thumbnail) Release() {
	if t != nil {
		t.img = nil
	}
}

func (t *Thumbnail) Released() bool {
	return t == nil || t.img == nil
}

// Renderer rasterises a page at a fixed base resolution and scales the result
// down to fit MaxWidth×MaxHeight.
type Renderer struct {
	MaxWidth  int
	MaxHeight int
	DPI       float64
}

// NewRenderer returns a Renderer with the standard 280×380 box at 96 DPI.
func NewRenderer() Renderer {
	return Renderer{MaxWidth: DefaultMaxWidth, MaxHeight: DefaultMaxHeight, DPI: DefaultDPI}
}

// Render produces the thumbnail for page index of doc. The rasteriser applies
// the page's current rotation, so the result always reflects it.
func (r Renderer) Render(doc document.Document, index int) (*Thumbnail, error) {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	raster, err := doc.Rasterize(index, dpi)
	if err != nil {
		if document.KindOf(err) != "" {
			return nil, err
		}
		return nil, document.RenderFailure("render page", err)
	}
	return &Thumbnail{img: r.scale(raster)}, nil
}

// scale fits src into the bounding box, preserving aspect ratio. Images that
// already fit are copied without enlargement.
func (r Renderer) scale(src image.Image) *image.RGBA {
	maxW, maxH := r.MaxWidth, r.MaxHeight
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}
	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Bounds().Dx() && h == src.Bounds().Dy() {
		draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// FitWithin returns the largest size not exceeding maxW×maxH with the aspect
// ratio of w×h. Sizes already inside the box are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}
