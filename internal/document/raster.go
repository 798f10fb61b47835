package document

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// rasterizer keeps one MuPDF handle open for the current byte image of a
// document and reopens it whenever the document version changes.
type rasterizer struct {
	mu      sync.Mutex
	doc     *fitz.Document
	version uint64
}

func (r *rasterizer) render(data []byte, version uint64, index int, dpi float64) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc == nil || r.version != version {
		if r.doc != nil {
			_ = r.doc.Close()
			r.doc = nil
		}
		doc, err := fitz.NewFromMemory(data)
		if err != nil {
			return nil, RenderFailure("open rasterizer", err)
		}
		r.doc = doc
		r.version = version
	}

	img, err := r.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, RenderFailure("rasterize", fmt.Errorf("page %d: %w", index+1, err))
	}
	return img, nil
}

func (r *rasterizer) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}
