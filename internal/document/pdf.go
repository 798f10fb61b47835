package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// pdfcpu would otherwise create ~/.config/pdfcpu on first use.
	api.DisableConfigDir()
}

// PDF is a Document backed by an in-memory PDF file. Every structural edit
// runs through pdfcpu and replaces the byte image; rasterisation goes through
// MuPDF.
type PDF struct {
	data    []byte
	ctx     *model.Context
	conf    *model.Configuration
	version uint64
	raster  *rasterizer
}

var _ Document = (*PDF)(nil)

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// New returns an empty document with zero pages.
func New() *PDF {
	return &PDF{conf: newConfig(), raster: &rasterizer{}}
}

// Open reads and validates the PDF at path.
func Open(path string) (*PDF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, IOError("open document", err)
	}
	doc := New()
	if err := doc.replace(data); err != nil {
		return nil, IOError("open document", fmt.Errorf("%s: %w", path, err))
	}
	return doc, nil
}

// Bytes returns the current serialized form. Nil for an empty document.
func (p *PDF) Bytes() []byte {
	return p.data
}

func (p *PDF) PageCount() int {
	if p.ctx == nil {
		return 0
	}
	return p.ctx.PageCount
}

func (p *PDF) inherited(op string, index int) (*model.InheritedPageAttrs, error) {
	if err := CheckIndex(op, index, p.PageCount()); err != nil {
		return nil, err
	}
	_, _, inh, err := p.ctx.PageDict(index+1, false)
	if err != nil {
		return nil, IOError(op, err)
	}
	if inh == nil {
		return &model.InheritedPageAttrs{}, nil
	}
	return inh, nil
}

func (p *PDF) Rotation(index int) (int, error) {
	inh, err := p.inherited("read rotation", index)
	if err != nil {
		return 0, err
	}
	return NormalizeRotation(inh.Rotate), nil
}

func (p *PDF) PageSize(index int) (float64, float64, error) {
	inh, err := p.inherited("read page size", index)
	if err != nil {
		return 0, 0, err
	}
	box := inh.MediaBox
	if box == nil {
		box = inh.CropBox
	}
	if box == nil {
		return A4.Width, A4.Height, nil
	}
	return box.Width(), box.Height(), nil
}

func (p *PDF) Rotate(index, delta int) error {
	if err := CheckIndex("rotate", index, p.PageCount()); err != nil {
		return err
	}
	if delta%90 != 0 {
		return RangeError("rotate", fmt.Errorf("rotation %d is not a multiple of 90", delta))
	}
	delta = NormalizeRotation(delta)
	if delta == 0 {
		return nil
	}
	return p.transform("rotate", func(rs io.ReadSeeker, w io.Writer) error {
		return api.Rotate(rs, w, delta, []string{strconv.Itoa(index + 1)}, p.conf)
	})
}

func (p *PDF) InsertDocument(src Document, at int) (int, error) {
	if err := CheckInsert("insert document", at, p.PageCount()); err != nil {
		return 0, err
	}
	other, ok := src.(*PDF)
	if !ok {
		return 0, IOError("insert document", fmt.Errorf("unsupported source %T", src))
	}
	count := other.PageCount()
	if count == 0 {
		return 0, nil
	}
	if err := p.splice("insert document", other.data, count, at); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *PDF) InsertImagePage(img image.Image, at int, paper *Paper) error {
	if err := CheckInsert("insert image", at, p.PageCount()); err != nil {
		return err
	}
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return IOError("encode image", err)
	}
	imp, err := importFor(img.Bounds(), paper)
	if err != nil {
		return IOError("insert image", err)
	}
	var page bytes.Buffer
	if err := api.ImportImages(nil, &page, []io.Reader{&encoded}, imp, p.conf); err != nil {
		return IOError("insert image", err)
	}
	return p.splice("insert image", page.Bytes(), 1, at)
}

// importFor describes an image page to pdfcpu. Without paper the page takes
// the image's pixel size; with paper the image is placed at paper.Fit.
func importFor(bounds image.Rectangle, paper *Paper) (*pdfcpu.Import, error) {
	if paper == nil {
		return api.Import("pos:full", types.POINTS)
	}
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	x, y, w, _ := paper.Fit(iw, ih)
	desc := fmt.Sprintf("dim:%.2f %.2f, pos:bl, off:%.2f %.2f, sc:%.6f abs",
		paper.Width, paper.Height, x, y, w/iw)
	return api.Import(desc, types.POINTS)
}

func (p *PDF) DeletePages(start, end int) error {
	n := p.PageCount()
	if err := CheckSpan("delete pages", start, end, n); err != nil {
		return err
	}
	if start == 0 && end == n-1 {
		p.clear()
		return nil
	}
	return p.transform("delete pages", func(rs io.ReadSeeker, w io.Writer) error {
		return api.RemovePages(rs, w, []string{pageSpan(start+1, end+1)}, p.conf)
	})
}

func (p *PDF) Extract(start, end int) (Document, error) {
	if err := CheckSpan("extract pages", start, end, p.PageCount()); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := api.Collect(bytes.NewReader(p.data), &out, []string{pageSpan(start+1, end+1)}, p.conf); err != nil {
		return nil, IOError("extract pages", err)
	}
	doc := New()
	if err := doc.replace(out.Bytes()); err != nil {
		return nil, IOError("extract pages", err)
	}
	return doc, nil
}

func (p *PDF) Rasterize(index int, dpi float64) (image.Image, error) {
	if err := CheckIndex("rasterize", index, p.PageCount()); err != nil {
		return nil, err
	}
	return p.raster.render(p.data, p.version, index, dpi)
}

func (p *PDF) Save(w io.Writer, opts SaveOptions) error {
	if p.PageCount() == 0 {
		return IOError("save", errors.New("document has no pages"))
	}
	conf := *p.conf
	conf.WriteObjectStream = opts.Compress
	conf.WriteXRefStream = opts.Compress
	if !opts.Cleanup {
		if _, err := w.Write(p.data); err != nil {
			return IOError("save", err)
		}
		return nil
	}
	if err := api.Optimize(bytes.NewReader(p.data), w, &conf); err != nil {
		return IOError("save", err)
	}
	return nil
}

func (p *PDF) Close() error {
	p.clear()
	return p.raster.close()
}

// splice merges a k-page PDF into the document so its first page lands at at.
func (p *PDF) splice(op string, other []byte, k, at int) error {
	n := p.PageCount()
	if n == 0 {
		return p.wrap(op, p.replace(bytes.Clone(other)))
	}
	var merged bytes.Buffer
	readers := []io.ReadSeeker{bytes.NewReader(p.data), bytes.NewReader(other)}
	if err := api.MergeRaw(readers, &merged, false, p.conf); err != nil {
		return IOError(op, err)
	}
	if at == n {
		return p.wrap(op, p.replace(merged.Bytes()))
	}
	var ordered bytes.Buffer
	if err := api.Collect(bytes.NewReader(merged.Bytes()), &ordered, spliceOrder(n, k, at), p.conf); err != nil {
		return IOError(op, err)
	}
	return p.wrap(op, p.replace(ordered.Bytes()))
}

func (p *PDF) transform(op string, fn func(rs io.ReadSeeker, w io.Writer) error) error {
	var out bytes.Buffer
	if err := fn(bytes.NewReader(p.data), &out); err != nil {
		return IOError(op, err)
	}
	return p.wrap(op, p.replace(out.Bytes()))
}

func (p *PDF) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return IOError(op, err)
}

func (p *PDF) replace(data []byte) error {
	ctx, err := api.ReadContext(bytes.NewReader(data), p.conf)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("count pages: %w", err)
	}
	p.data = data
	p.ctx = ctx
	p.version++
	return nil
}

func (p *PDF) clear() {
	p.data = nil
	p.ctx = nil
	p.version++
}

// pageSpan formats a 1-based inclusive page selection.
func pageSpan(from, to int) string {
	if from == to {
		return strconv.Itoa(from)
	}
	return strconv.Itoa(from) + "-" + strconv.Itoa(to)
}

// spliceOrder returns the page selection that moves pages n+1..n+k of a
// merged file to sit after the first at pages.
func spliceOrder(n, k, at int) []string {
	var sel []string
	if at > 0 {
		sel = append(sel, pageSpan(1, at))
	}
	sel = append(sel, pageSpan(n+1, n+k))
	if at < n {
		sel = append(sel, pageSpan(at+1, n))
	}
	return sel
}
