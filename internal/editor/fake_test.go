package editor

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/render"
)

type fakePage struct {
	id   string
	w, h float64
	rot  int
}

// fakeDoc is an in-memory document. Pages rasterise to a blank bitmap of
// their rotated size in points.
type fakeDoc struct {
	pages  []fakePage
	closed atomic.Int32
}

var _ document.Document = (*fakeDoc)(nil)

func newFakeDoc(ids ...string) *fakeDoc {
	d := &fakeDoc{}
	for _, id := range ids {
		d.pages = append(d.pages, fakePage{id: id, w: 60, h: 80})
	}
	return d
}

func numberedDoc(prefix string, n int) *fakeDoc {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return newFakeDoc(ids...)
}

func (d *fakeDoc) ids() []string {
	out := make([]string, len(d.pages))
	for i, p := range d.pages {
		out[i] = p.id
	}
	return out
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Rotation(index int) (int, error) {
	if err := document.CheckIndex("rotation", index, len(d.pages)); err != nil {
		return 0, err
	}
	return d.pages[index].rot, nil
}

func (d *fakeDoc) PageSize(index int) (float64, float64, error) {
	if err := document.CheckIndex("page size", index, len(d.pages)); err != nil {
		return 0, 0, err
	}
	return d.pages[index].w, d.pages[index].h, nil
}

func (d *fakeDoc) Rotate(index, delta int) error {
	d.pages[index].rot = document.NormalizeRotation(d.pages[index].rot + delta)
	return nil
}

func (d *fakeDoc) InsertDocument(src document.Document, at int) (int, error) {
	other, ok := src.(*fakeDoc)
	if !ok {
		return 0, errors.New("unsupported source")
	}
	added := append([]fakePage(nil), other.pages...)
	d.pages = append(d.pages[:at], append(added, d.pages[at:]...)...)
	return len(added), nil
}

func (d *fakeDoc) InsertImagePage(img image.Image, at int, paper *document.Paper) error {
	p := fakePage{id: fmt.Sprintf("img%dx%d", img.Bounds().Dx(), img.Bounds().Dy())}
	if paper != nil {
		p.w, p.h = paper.Width, paper.Height
	} else {
		p.w, p.h = float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	}
	d.pages = append(d.pages[:at], append([]fakePage{p}, d.pages[at:]...)...)
	return nil
}

func (d *fakeDoc) DeletePages(start, end int) error {
	d.pages = append(d.pages[:start], d.pages[end+1:]...)
	return nil
}

func (d *fakeDoc) Extract(start, end int) (document.Document, error) {
	return &fakeDoc{pages: append([]fakePage(nil), d.pages[start:end+1]...)}, nil
}

func (d *fakeDoc) Rasterize(index int, _ float64) (image.Image, error) {
	p := d.pages[index]
	w, h := int(p.w), int(p.h)
	if p.rot == 90 || p.rot == 270 {
		w, h = h, w
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// Save writes one "id rotation" line per page.
func (d *fakeDoc) Save(w io.Writer, _ document.SaveOptions) error {
	if len(d.pages) == 0 {
		return document.IOError("save", errors.New("document has no pages"))
	}
	for _, p := range d.pages {
		if _, err := fmt.Fprintf(w, "%s %d\n", p.id, p.rot); err != nil {
			return err
		}
	}
	return nil
}

func (d *fakeDoc) Close() error {
	d.closed.Add(1)
	return nil
}

// fakeRenderer wraps the real renderer. When gate is set every render waits
// for a token (or for the gate to close) before starting.
type fakeRenderer struct {
	inner render.Renderer
	gate  chan struct{}
	calls atomic.Int32
	fail  atomic.Bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{inner: render.Renderer{MaxWidth: 40, MaxHeight: 40, DPI: 72}}
}

func newGatedRenderer() *fakeRenderer {
	r := newFakeRenderer()
	r.gate = make(chan struct{})
	return r
}

func (r *fakeRenderer) Render(doc document.Document, index int) (*render.Thumbnail, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.calls.Add(1)
	if r.fail.Load() {
		return nil, document.RenderFailure("render page", fmt.Errorf("page %d", index))
	}
	return r.inner.Render(doc, index)
}

// allow lets n more renders start.
func (r *fakeRenderer) allow(n int) {
	for range n {
		r.gate <- struct{}{}
	}
}

type fixture struct {
	session  *Session
	renderer *fakeRenderer
	docs     map[string]*fakeDoc
	opened   map[string]*fakeDoc
}

func newFixture(t *testing.T, renderer *fakeRenderer) *fixture {
	t.Helper()
	f := &fixture{
		renderer: renderer,
		docs:     map[string]*fakeDoc{},
		opened:   map[string]*fakeDoc{},
	}
	f.session = NewSession(Options{
		Renderer: renderer,
		OpenDocument: func(path string) (document.Document, error) {
			src, ok := f.docs[path]
			if !ok {
				return nil, document.IOError("open", fmt.Errorf("%s: no such file", path))
			}
			d := &fakeDoc{pages: append([]fakePage(nil), src.pages...)}
			f.opened[path] = d
			return d, nil
		},
		NewDocument: func() document.Document { return &fakeDoc{} },
		LoadImage:   fakeImage,
	})
	t.Cleanup(func() {
		if renderer.gate != nil {
			select {
			case <-renderer.gate:
			default:
				close(renderer.gate)
			}
		}
		_ = f.session.Close()
	})
	return f
}

// fakeImage decodes names like "scan-800x600.png"; names containing "bad"
// fail to load.
func fakeImage(path string) (image.Image, error) {
	if strings.Contains(path, "bad") {
		return nil, document.IOError("decode image", fmt.Errorf("%s: unknown format", path))
	}
	var w, h int
	base := path[strings.LastIndex(path, "-")+1:]
	if _, err := fmt.Sscanf(base, "%dx%d", &w, &h); err != nil {
		w, h = 100, 100
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// current returns the session's open fake document.
func (f *fixture) current(t *testing.T) *fakeDoc {
	t.Helper()
	d, ok := f.session.Document().(*fakeDoc)
	require.True(t, ok, "document is %T", f.session.Document())
	return d
}

func (f *fixture) open(t *testing.T, path string, doc *fakeDoc) {
	t.Helper()
	f.docs[path] = doc
	require.NoError(t, f.session.Open(path))
}

// pollLoad polls until an event satisfies match.
func pollLoad(t *testing.T, s *Session, match func(Event) bool) Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ev, ok := s.PollLoad()
		if ok && match(ev) {
			return ev
		}
		if !ok {
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatalf("timed out polling load")
	return Event{}
}

func finishLoad(t *testing.T, s *Session) Event {
	t.Helper()
	return pollLoad(t, s, func(ev Event) bool { return ev.Kind == EventLoadFinished })
}

func pollSave(t *testing.T, s *Session) Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if ev, ok := s.PollSave(); ok {
			return ev
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out polling save")
	return Event{}
}

// requireConsistent checks that the preview index mirrors the document and
// every label matches its position.
func requireConsistent(t *testing.T, s *Session) {
	t.Helper()
	require.Equal(t, s.PageCount(), s.Previews().Len())
	for i, label := range s.Previews().Labels() {
		require.Equal(t, fmt.Sprintf("Page %d", i+1), label)
	}
	selected := 0
	for _, e := range s.Previews().Entries() {
		if e.Selected {
			selected++
		}
	}
	require.LessOrEqual(t, selected, 1)
}
