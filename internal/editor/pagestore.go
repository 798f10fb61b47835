package editor

import (
	"errors"
	"image"

	"github.com/five82/pagedeck/internal/document"
)

// PageStore is the authoritative page order. It validates every edit before
// handing it to the document, so a rejected edit leaves the document untouched.
type PageStore struct {
	doc document.Document
}

func NewPageStore(doc document.Document) *PageStore {
	return &PageStore{doc: doc}
}

func (p *PageStore) Document() document.Document {
	return p.doc
}

func (p *PageStore) Len() int {
	if p == nil || p.doc == nil {
		return 0
	}
	return p.doc.PageCount()
}

// InsertDocument copies every page of src to positions after..after+K-1.
func (p *PageStore) InsertDocument(src document.Document, after int) (int, error) {
	if err := document.CheckInsert("insert document", after, p.Len()); err != nil {
		return 0, err
	}
	return p.doc.InsertDocument(src, after)
}

// InsertImage adds one image page at position at.
func (p *PageStore) InsertImage(img image.Image, at int, paper *document.Paper) error {
	if err := document.CheckInsert("insert image", at, p.Len()); err != nil {
		return err
	}
	return p.doc.InsertImagePage(img, at, paper)
}

// DeleteOne removes the page at index. Removing the last remaining page is
// allowed and leaves an empty document.
func (p *PageStore) DeleteOne(index int) error {
	if err := document.CheckIndex("delete page", index, p.Len()); err != nil {
		return err
	}
	return p.doc.DeletePages(index, index)
}

// DeleteRange removes start..end inclusive. The range may not cover every page.
func (p *PageStore) DeleteRange(start, end int) error {
	n := p.Len()
	if err := document.CheckSpan("delete range", start, end, n); err != nil {
		return err
	}
	if start == 0 && end == n-1 {
		return document.CapacityError("delete range", errors.New("at least one page must remain"))
	}
	return p.doc.DeletePages(start, end)
}

// Rotate adds delta degrees to the page rotation and returns the new value.
// delta must be a multiple of 90; anything else is a RangeError and leaves the
// page unchanged.
func (p *PageStore) Rotate(index, delta int) (int, error) {
	if err := document.CheckIndex("rotate", index, p.Len()); err != nil {
		return 0, err
	}
	if delta%90 != 0 {
		return 0, document.RangeError("rotate", errors.New("rotation must be a multiple of 90 degrees"))
	}
	if err := p.doc.Rotate(index, delta); err != nil {
		return 0, err
	}
	return p.doc.Rotation(index)
}

// Rotation returns the current page rotation.
func (p *PageStore) Rotation(index int) (int, error) {
	if err := document.CheckIndex("read rotation", index, p.Len()); err != nil {
		return 0, err
	}
	return p.doc.Rotation(index)
}
