package editor

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/logging"
)

func TestSession_OpenRendersEveryPage(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/report.pdf", numberedDoc("p", 5))

	require.True(t, f.session.LoadActive())
	require.Equal(t, "report.pdf", f.session.Name())

	var progress []int
	ev := pollLoad(t, f.session, func(ev Event) bool {
		if ev.Kind == EventPageLoaded {
			progress = append(progress, ev.Done)
		}
		return ev.Kind == EventLoadFinished
	})
	require.Equal(t, LoadCompleted, ev.Load)
	require.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	require.Equal(t, 5, ev.Total)
	require.False(t, f.session.LoadActive())
	requireConsistent(t, f.session)
	for _, e := range f.session.Previews().Entries() {
		require.NotNil(t, e.Thumb.Image())
	}
}

func TestSession_NewDocumentIsUntitled(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	require.Equal(t, "", f.session.Name())
	require.NoError(t, f.session.New())
	require.Equal(t, UntitledName, f.session.Name())
	require.Equal(t, 0, f.session.PageCount())
	require.False(t, f.session.LoadActive())
}

func TestSession_OpenFailureResets(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", numberedDoc("a", 2))
	finishLoad(t, f.session)

	err := f.session.Open("/docs/missing.pdf")
	require.True(t, document.IsKind(err, document.KindIO))
	require.Nil(t, f.session.Document())
	require.Equal(t, 0, f.session.Previews().Len())
	require.Equal(t, int32(1), f.opened["/docs/a.pdf"].closed.Load())
}

func TestSession_EditsWithoutDocument(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	require.ErrorIs(t, f.session.DeleteOne(0), ErrNoDocument)
	_, err := f.session.Rotate(0, 90)
	require.ErrorIs(t, err, ErrNoDocument)
	require.ErrorIs(t, f.session.Save("/tmp/x.pdf", PageRange{}), ErrNoDocument)
}

func TestSession_DeleteMiddlePage(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/three.pdf", newFakeDoc("a", "b", "c"))
	finishLoad(t, f.session)
	require.NoError(t, f.session.Select(1))

	require.NoError(t, f.session.DeleteOne(1))

	require.Equal(t, []string{"a", "c"}, f.current(t).ids())
	require.Equal(t, []string{"Page 1", "Page 2"}, f.session.Previews().Labels())
	_, ok := f.session.Selected()
	require.False(t, ok)
	requireConsistent(t, f.session)
}

func TestSession_DeleteOnlyPageLeavesEmptyDocument(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/one.pdf", newFakeDoc("a"))
	finishLoad(t, f.session)

	require.NoError(t, f.session.DeleteOne(0))
	require.Equal(t, 0, f.session.PageCount())
	requireConsistent(t, f.session)
}

func TestSession_DeleteRangeKeepsOnePage(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/four.pdf", newFakeDoc("a", "b", "c", "d"))
	finishLoad(t, f.session)

	err := f.session.DeleteRange(0, 3)
	require.True(t, document.IsKind(err, document.KindCapacity), "err = %v", err)
	require.Equal(t, 4, f.session.PageCount())

	for _, tc := range [][2]int{{-1, 1}, {2, 1}, {1, 4}} {
		err := f.session.DeleteRange(tc[0], tc[1])
		require.True(t, document.IsKind(err, document.KindRange), "DeleteRange(%d, %d) = %v", tc[0], tc[1], err)
	}
	require.Equal(t, 4, f.session.PageCount())

	require.NoError(t, f.session.DeleteRange(1, 3))
	require.Equal(t, []string{"a"}, f.current(t).ids())
	requireConsistent(t, f.session)
}

func TestSession_RotateFullTurn(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", newFakeDoc("a", "b"))
	finishLoad(t, f.session)

	for _, delta := range []int{90, -90} {
		var got int
		for range 4 {
			var err error
			got, err = f.session.Rotate(1, delta)
			require.NoError(t, err)
		}
		require.Equal(t, 0, got)
	}

	got, err := f.session.Rotate(1, -90)
	require.NoError(t, err)
	require.Equal(t, 270, got)

	// 60x80 portrait page renders landscape once turned.
	e, ok := f.session.Previews().Entry(1)
	require.True(t, ok)
	w, h := e.Thumb.Size()
	require.Greater(t, w, h)

	_, err = f.session.Rotate(1, 45)
	require.True(t, document.IsKind(err, document.KindRange))
	_, err = f.session.Rotate(2, 90)
	require.True(t, document.IsKind(err, document.KindRange))
	rot, err := f.session.Rotation(1)
	require.NoError(t, err)
	require.Equal(t, 270, rot)
}

func TestSession_RotateRenderFailureRebuildsPreviews(t *testing.T) {
	r := newFakeRenderer()
	f := newFixture(t, r)
	f.open(t, "/docs/a.pdf", newFakeDoc("a", "b", "c"))
	finishLoad(t, f.session)

	r.fail.Store(true)
	rot, err := f.session.Rotate(0, 90)
	require.NoError(t, err)
	require.Equal(t, 90, rot)
	require.True(t, f.session.LoadActive())
	r.fail.Store(false)

	// the reload may have already failed on its first page; keep going until
	// a load completes
	for {
		ev := finishLoad(t, f.session)
		if ev.Load == LoadCompleted {
			break
		}
		f.session.reloadPreviews()
	}
	requireConsistent(t, f.session)
}

func TestSession_InsertDocumentShiftsPages(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/base.pdf", newFakeDoc("a", "b", "c"))
	finishLoad(t, f.session)
	f.docs["/docs/extra.pdf"] = newFakeDoc("x", "y")
	require.NoError(t, f.session.Select(2))

	n, err := f.session.InsertDocument("/docs/extra.pdf", 1)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, []string{"a", "x", "y", "b", "c"}, f.current(t).ids())
	sel, ok := f.session.Selected()
	require.True(t, ok)
	require.Equal(t, 4, sel)
	requireConsistent(t, f.session)
	require.Equal(t, int32(1), f.opened["/docs/extra.pdf"].closed.Load())

	_, err = f.session.InsertDocument("/docs/extra.pdf", 9)
	require.True(t, document.IsKind(err, document.KindRange))
	_, err = f.session.InsertDocument("/docs/nope.pdf", 0)
	require.True(t, document.IsKind(err, document.KindIO))
	require.Equal(t, 5, f.session.PageCount())
}

func TestSession_InsertImagesNativeSize(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	require.NoError(t, f.session.New())

	n, err := f.session.InsertImages([]string{"/img/a-800x600.png", "/img/b-600x800.jpg"}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	doc := f.current(t)
	w, h, err := doc.PageSize(0)
	require.NoError(t, err)
	require.Equal(t, [2]float64{800, 600}, [2]float64{w, h})
	w, h, err = doc.PageSize(1)
	require.NoError(t, err)
	require.Equal(t, [2]float64{600, 800}, [2]float64{w, h})
	requireConsistent(t, f.session)
}

func TestSession_InsertImagesOnPaper(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", newFakeDoc("a"))
	finishLoad(t, f.session)

	a4, ok := document.DefaultPapers().Lookup("a4")
	require.True(t, ok)
	_, err := f.session.InsertImages([]string{"/img/s-100x300.png"}, 1, a4)
	require.NoError(t, err)

	w, h, err := f.current(t).PageSize(1)
	require.NoError(t, err)
	require.Equal(t, [2]float64{595, 842}, [2]float64{w, h})
}

func TestSession_InsertImagesStopsAtFailure(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", newFakeDoc("a", "b"))
	finishLoad(t, f.session)

	paths := []string{"/img/one-10x10.png", "/img/bad.png", "/img/three-10x10.png"}
	n, err := f.session.InsertImages(paths, 1, nil)
	require.Equal(t, 1, n)

	var batch *BatchError
	require.True(t, errors.As(err, &batch))
	require.Equal(t, 1, batch.Index)
	require.Equal(t, "/img/bad.png", batch.Path)
	require.Equal(t, 1, batch.Inserted)
	require.True(t, document.IsKind(err, document.KindIO))

	require.Equal(t, []string{"a", "img10x10", "b"}, f.current(t).ids())
	requireConsistent(t, f.session)
}

func TestSession_SaveRangeKeepsRotation(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/five.pdf", newFakeDoc("a", "b", "c", "d", "e"))
	finishLoad(t, f.session)
	_, err := f.session.Rotate(1, 90)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "part.pdf")
	require.NoError(t, f.session.Save(out, PageRange{From: 2, To: 3}))
	require.True(t, f.session.SaveActive())
	require.ErrorIs(t, f.session.DeleteOne(0), ErrBusy)

	ev := pollSave(t, f.session)
	require.Equal(t, EventSaveFinished, ev.Kind)
	require.NoError(t, ev.Err)
	require.Equal(t, 2, ev.Save.Pages)
	require.False(t, f.session.SaveActive())
	require.Equal(t, SaveSucceeded, f.session.SaveSession().State())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "b 90\nc 0\n", string(data))
	require.Equal(t, int64(len(data)), ev.Save.Bytes)
	require.Equal(t, 5, f.session.PageCount())
}

func TestSession_SaveRejectsBadRange(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/five.pdf", numberedDoc("p", 5))
	finishLoad(t, f.session)

	out := filepath.Join(t.TempDir(), "x.pdf")
	for _, rng := range []PageRange{{From: 0, To: 2}, {From: 3, To: 2}, {From: 1, To: 6}} {
		err := f.session.Save(out, rng)
		require.True(t, document.IsKind(err, document.KindRange), "Save(%v) = %v", rng, err)
	}
	require.Nil(t, f.session.SaveSession())
}

func TestSession_SaveFailureIsIOError(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", newFakeDoc("a"))
	finishLoad(t, f.session)

	out := filepath.Join(t.TempDir(), "missing", "x.pdf")
	require.NoError(t, f.session.Save(out, PageRange{}))
	ev := pollSave(t, f.session)
	require.True(t, document.IsKind(ev.Err, document.KindIO), "err = %v", ev.Err)
	require.Equal(t, SaveFailed, f.session.SaveSession().State())
}

func TestSession_CancelLoadFillsPlaceholders(t *testing.T) {
	r := newGatedRenderer()
	f := newFixture(t, r)
	f.open(t, "/docs/big.pdf", numberedDoc("p", 50))

	r.allow(10)
	pollLoad(t, f.session, func(ev Event) bool { return ev.Kind == EventPageLoaded && ev.Done == 10 })

	f.session.CancelLoad()
	close(r.gate)
	ev := finishLoad(t, f.session)

	require.Equal(t, LoadCancelled, ev.Load)
	require.Equal(t, 10, ev.Done)
	require.False(t, f.session.LoadActive())
	require.Equal(t, 50, f.session.Previews().Len())
	requireConsistent(t, f.session)
	for i, e := range f.session.Previews().Entries() {
		require.Equal(t, i < 10, e.Thumb != nil, "entry %d", i)
	}
	require.LessOrEqual(t, r.calls.Load(), int32(11))
}

func TestSession_LoadFailureFillsPlaceholders(t *testing.T) {
	r := newFakeRenderer()
	r.fail.Store(true)
	f := newFixture(t, r)
	f.open(t, "/docs/a.pdf", numberedDoc("p", 3))

	ev := finishLoad(t, f.session)
	require.Equal(t, LoadFailed, ev.Load)
	require.True(t, document.IsKind(ev.Err, document.KindRender))
	requireConsistent(t, f.session)
}

func TestSession_WorkerFailuresLogStack(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pagedeck.log")
	log, closer, err := logging.New(logging.Config{File: logPath})
	require.NoError(t, err)

	r := newFakeRenderer()
	r.fail.Store(true)
	s := NewSession(Options{
		Renderer: r,
		Logger:   &log,
		OpenDocument: func(string) (document.Document, error) {
			return numberedDoc("p", 2), nil
		},
	})
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Open("/docs/a.pdf"))
	require.Equal(t, LoadFailed, finishLoad(t, s).Load)

	require.NoError(t, s.Save(filepath.Join(t.TempDir(), "missing", "x.pdf"), PageRange{}))
	ev := pollSave(t, s)
	require.True(t, document.IsKind(ev.Err, document.KindIO), "err = %v", ev.Err)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	stacks := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var rec struct {
			Message string           `json:"message"`
			Stack   []map[string]any `json:"stack"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		stacks[rec.Message] = len(rec.Stack)
	}
	require.Positive(t, stacks["load failed"])
	require.Positive(t, stacks["save failed"])
}

func TestSession_EditsRefusedWhileLoading(t *testing.T) {
	r := newGatedRenderer()
	f := newFixture(t, r)
	f.open(t, "/docs/a.pdf", numberedDoc("p", 3))

	require.ErrorIs(t, f.session.DeleteOne(0), ErrBusy)
	_, err := f.session.Rotate(0, 90)
	require.ErrorIs(t, err, ErrBusy)
	_, err = f.session.InsertImages([]string{"/img/x-10x10.png"}, 0, nil)
	require.ErrorIs(t, err, ErrBusy)
	require.Equal(t, []string{"p1", "p2", "p3"}, f.current(t).ids())

	close(r.gate)
	finishLoad(t, f.session)
	require.NoError(t, f.session.DeleteOne(0))
}

func TestSession_OpenDuringLoadDiscardsStaleResults(t *testing.T) {
	r := newGatedRenderer()
	f := newFixture(t, r)
	f.open(t, "/docs/first.pdf", numberedDoc("a", 10))
	r.allow(2)
	pollLoad(t, f.session, func(ev Event) bool { return ev.Kind == EventPageLoaded && ev.Done == 2 })

	f.open(t, "/docs/second.pdf", numberedDoc("b", 3))
	require.Equal(t, 0, f.session.Previews().Len())
	require.True(t, f.session.LoadActive())
	first := f.opened["/docs/first.pdf"]
	require.Equal(t, int32(0), first.closed.Load())

	close(r.gate)
	ev := finishLoad(t, f.session)
	require.Equal(t, LoadCompleted, ev.Load)
	require.Equal(t, 3, ev.Total)
	require.Equal(t, int32(1), first.closed.Load())
	require.Equal(t, []string{"b1", "b2", "b3"}, f.current(t).ids())
	requireConsistent(t, f.session)
}

func TestSession_SelectRules(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", newFakeDoc("a", "b", "c"))
	finishLoad(t, f.session)

	require.NoError(t, f.session.Select(0))
	require.NoError(t, f.session.Select(2))
	require.NoError(t, f.session.Select(2))
	sel, ok := f.session.Selected()
	require.True(t, ok)
	require.Equal(t, 2, sel)
	requireConsistent(t, f.session)

	require.True(t, document.IsKind(f.session.Select(3), document.KindRange))
	sel, _ = f.session.Selected()
	require.Equal(t, 2, sel)

	idx, err := f.session.DeleteSelected()
	require.NoError(t, err)
	require.Equal(t, 2, idx)
	_, err = f.session.DeleteSelected()
	require.True(t, document.IsKind(err, document.KindRange))
}

func TestSession_RandomEditsStayConsistent(t *testing.T) {
	f := newFixture(t, newFakeRenderer())
	f.open(t, "/docs/a.pdf", numberedDoc("p", 6))
	finishLoad(t, f.session)
	f.docs["/docs/extra.pdf"] = newFakeDoc("x", "y")

	rng := rand.New(rand.NewSource(7))
	for step := range 300 {
		n := f.session.PageCount()
		var err error
		switch op := rng.Intn(6); {
		case op == 0:
			_, err = f.session.InsertDocument("/docs/extra.pdf", rng.Intn(n+1))
		case op == 1:
			_, err = f.session.InsertImages([]string{"/img/i-30x20.png", "/img/j-20x30.png"}, rng.Intn(n+1), nil)
		case op == 2 && n > 0:
			err = f.session.DeleteOne(rng.Intn(n))
		case op == 3 && n > 1:
			start := rng.Intn(n - 1)
			end := start + rng.Intn(n-start-1)
			err = f.session.DeleteRange(start, end)
		case op == 4 && n > 0:
			_, err = f.session.Rotate(rng.Intn(n), []int{90, -90, 180, 270}[rng.Intn(4)])
		case n > 0:
			err = f.session.Select(rng.Intn(n))
		}
		require.NoError(t, err, "step %d", step)
		requireConsistent(t, f.session)

		doc := f.current(t)
		for i, e := range f.session.Previews().Entries() {
			rot, _ := doc.Rotation(i)
			w, h := e.Thumb.Size()
			p := doc.pages[i]
			landscape := p.w > p.h
			if rot == 90 || rot == 270 {
				landscape = !landscape
			}
			require.Equal(t, landscape, w > h, "step %d page %d", step, i)
		}
	}
}
