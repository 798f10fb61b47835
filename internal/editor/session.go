package editor

import (
	"errors"
	"image"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/render"
)

// UntitledName is shown for a document that has never been saved or opened.
const UntitledName = "Untitled.pdf"

// Options configure a Session. Zero values select the PDF implementation,
// the standard renderer and a no-op logger.
type Options struct {
	Renderer     PageRenderer
	Logger       *zerolog.Logger
	OpenDocument func(path string) (document.Document, error)
	NewDocument  func() document.Document
	LoadImage    func(path string) (image.Image, error)
}

// EventKind identifies what a poll applied.
type EventKind int

const (
	EventPageLoaded EventKind = iota
	EventLoadFinished
	EventSaveFinished
)

// Event reports one applied queue item to the caller of PollLoad/PollSave.
type Event struct {
	Kind  EventKind
	Index int // page index for EventPageLoaded
	Done  int
	Total int
	Load  LoadState
	Save  SaveResult
	Err   error
}

// Session owns the open document, its page store and preview index, and the
// current load and save sessions. All methods must be called from one
// goroutine; background work only reaches it through the session queues.
type Session struct {
	opts Options
	log  zerolog.Logger

	doc      document.Document
	path     string
	store    *PageStore
	previews *PreviewIndex

	load        *LoadSession
	pendingLoad bool
	save        *SaveSession
}

func NewSession(opts Options) *Session {
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer()
	}
	if opts.OpenDocument == nil {
		opts.OpenDocument = func(path string) (document.Document, error) {
			return document.Open(path)
		}
	}
	if opts.NewDocument == nil {
		opts.NewDocument = func() document.Document { return document.New() }
	}
	if opts.LoadImage == nil {
		opts.LoadImage = document.LoadImage
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Session{
		opts:     opts,
		log:      log.With().Str("component", "editor").Logger(),
		store:    NewPageStore(nil),
		previews: NewPreviewIndex(),
	}
}

// Document returns the open document, or nil.
func (s *Session) Document() document.Document {
	return s.doc
}

// Previews returns the preview index. Callers must not mutate it directly.
func (s *Session) Previews() *PreviewIndex {
	return s.previews
}

// Name is the base name of the document's file.
func (s *Session) Name() string {
	if s.doc == nil {
		return ""
	}
	if s.path == "" {
		return UntitledName
	}
	return filepath.Base(s.path)
}

func (s *Session) Path() string {
	return s.path
}

func (s *Session) PageCount() int {
	return s.store.Len()
}

// Selected returns the selected page index, if any.
func (s *Session) Selected() (int, bool) {
	return s.previews.Selected()
}

// Load returns the current or most recent load session.
func (s *Session) Load() *LoadSession {
	return s.load
}

// SaveSession returns the current or most recent save session.
func (s *Session) SaveSession() *SaveSession {
	return s.save
}

// LoadActive reports whether a load is running or waiting to start. Page
// edits are refused while it is.
func (s *Session) LoadActive() bool {
	return s.pendingLoad || (s.load != nil && s.load.Running())
}

func (s *Session) SaveActive() bool {
	return s.save != nil && s.save.Running()
}

// Active reports whether the caller should keep polling.
func (s *Session) Active() bool {
	return s.LoadActive() || s.SaveActive()
}

// Open replaces the current document with the file at path. On failure the
// session is reset to having no document at all.
func (s *Session) Open(path string) error {
	if s.SaveActive() {
		return ErrBusy
	}
	doc, err := s.opts.OpenDocument(path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("open failed")
		s.Reset()
		return err
	}
	s.log.Info().Str("path", path).Int("pages", doc.PageCount()).Msg("document opened")
	s.replace(doc, path)
	return nil
}

// New replaces the current document with an empty one.
func (s *Session) New() error {
	if s.SaveActive() {
		return ErrBusy
	}
	s.replace(s.opts.NewDocument(), "")
	s.log.Info().Msg("new document")
	return nil
}

// Reset drops the document, previews and selection.
func (s *Session) Reset() {
	s.replace(nil, "")
}

// Close cancels any load, waits for background workers and closes the document.
func (s *Session) Close() error {
	if l := s.load; l != nil {
		// a stale load that never drained still owns its document
		owned := l.Running() && l.stale && l.doc != s.doc
		l.Cancel()
		l.Wait()
		s.drainStale()
		if owned && l.doc != nil {
			_ = l.doc.Close()
		}
	}
	if s.save != nil {
		s.save.Wait()
	}
	s.previews.Clear()
	s.pendingLoad = false
	if s.doc == nil {
		return nil
	}
	err := s.doc.Close()
	s.doc = nil
	s.store = NewPageStore(nil)
	return err
}

// drainStale releases thumbnails still queued by a finished worker.
func (s *Session) drainStale() {
	for {
		item, ok := s.load.next()
		if !ok {
			return
		}
		if item.kind == pageRendered {
			item.thumb.Release()
			continue
		}
		if s.load.Running() {
			s.load.finish(item)
		}
	}
}

// replace installs doc. A running load is cancelled and marked stale; the new
// load starts only after the stale one has drained its LoadComplete, and the
// document the stale worker is reading stays open until then.
func (s *Session) replace(doc document.Document, path string) {
	old := s.doc
	s.doc, s.path = doc, path
	s.store = NewPageStore(doc)
	s.previews.Clear()

	if s.load != nil && s.load.Running() {
		s.load.Cancel()
		s.load.stale = true
		s.pendingLoad = true
		if old != nil && old != s.load.doc {
			_ = old.Close()
		}
		return
	}
	if old != nil && old != doc {
		_ = old.Close()
	}
	s.beginLoad()
}

func (s *Session) beginLoad() {
	s.pendingLoad = false
	if s.doc == nil || s.doc.PageCount() == 0 {
		return
	}
	s.load = StartLoad(s.doc, s.opts.Renderer, s.log)
}

// reloadPreviews discards every preview and renders the document again.
func (s *Session) reloadPreviews() {
	s.log.Warn().Msg("rebuilding all previews")
	s.previews.Clear()
	s.beginLoad()
}

// CancelLoad asks the running load to stop. The pages already rendered stay;
// the rest get placeholder entries once the worker confirms.
func (s *Session) CancelLoad() {
	if s.load != nil && s.load.Running() {
		s.load.Cancel()
	}
}

// PollLoad applies at most one RenderQueue item. It reports false when
// nothing visible to the caller happened.
func (s *Session) PollLoad() (Event, bool) {
	l := s.load
	if l == nil || !l.Running() {
		if s.pendingLoad {
			s.beginLoad()
		}
		return Event{}, false
	}
	item, ok := l.next()
	if !ok {
		return Event{}, false
	}

	if l.stale {
		if item.kind == pageRendered {
			item.thumb.Release()
			return Event{}, false
		}
		l.finish(item)
		if l.doc != nil && l.doc != s.doc {
			_ = l.doc.Close()
		}
		if s.pendingLoad {
			s.beginLoad()
		}
		return Event{}, false
	}

	if item.kind == pageRendered {
		s.previews.place(item.index, item.thumb)
		l.rendered++
		return Event{Kind: EventPageLoaded, Index: item.index, Done: item.index + 1, Total: l.total}, true
	}

	state := l.finish(item)
	if state != LoadCompleted {
		s.previews.fill(l.total)
	}
	return Event{Kind: EventLoadFinished, Done: l.rendered, Total: l.total, Load: state, Err: item.err}, true
}

// PollSave checks the save result queue once.
func (s *Session) PollSave() (Event, bool) {
	if s.save == nil {
		return Event{}, false
	}
	res, ok := s.save.Poll()
	if !ok {
		return Event{}, false
	}
	return Event{Kind: EventSaveFinished, Save: res, Err: res.Err}, true
}

// Select marks one page as selected.
func (s *Session) Select(index int) error {
	return s.previews.Select(index)
}

func (s *Session) editable() error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.Active() {
		return ErrBusy
	}
	return nil
}

// InsertDocument inserts every page of the PDF at path so the first one lands
// at position after, then renders the new pages.
func (s *Session) InsertDocument(path string, after int) (int, error) {
	if err := s.editable(); err != nil {
		return 0, err
	}
	if err := document.CheckInsert("insert document", after, s.store.Len()); err != nil {
		return 0, err
	}
	src, err := s.opts.OpenDocument(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	n, err := s.store.InsertDocument(src, after)
	if err != nil {
		return 0, err
	}
	thumbs := make([]*render.Thumbnail, 0, n)
	for i := after; i < after+n; i++ {
		thumb, err := s.opts.Renderer.Render(s.doc, i)
		if err != nil {
			for _, t := range thumbs {
				t.Release()
			}
			s.log.Warn().Err(err).Int("page", i).Msg("render after insert failed")
			s.reloadPreviews()
			return n, nil
		}
		thumbs = append(thumbs, thumb)
	}
	s.previews.Insert(after, thumbs...)
	s.log.Info().Str("source", path).Int("pages", n).Int("at", after).Msg("pages inserted")
	return n, nil
}

// InsertImages adds one page per image, image k at position after+k. A
// failing image stops the batch; pages inserted before it stay and the
// returned *BatchError names the failing image.
func (s *Session) InsertImages(paths []string, after int, paper *document.Paper) (int, error) {
	if err := s.editable(); err != nil {
		return 0, err
	}
	if err := document.CheckInsert("insert images", after, s.store.Len()); err != nil {
		return 0, err
	}

	inserted := 0
	reload := false
	var batchErr error
	for k, path := range paths {
		at := after + k
		img, err := s.opts.LoadImage(path)
		if err == nil {
			err = s.store.InsertImage(img, at, paper)
		}
		if err != nil {
			batchErr = &BatchError{Index: k, Path: path, Inserted: inserted, Err: err}
			break
		}
		inserted++
		thumb, err := s.opts.Renderer.Render(s.doc, at)
		if err != nil {
			s.log.Warn().Err(err).Int("page", at).Msg("render after image insert failed")
			reload = true
		}
		s.previews.Insert(at, thumb)
	}

	if reload {
		s.reloadPreviews()
	}
	if batchErr != nil {
		s.log.Warn().Err(batchErr).Int("inserted", inserted).Msg("image batch stopped")
		return inserted, batchErr
	}
	s.log.Info().Int("pages", inserted).Int("at", after).Msg("images inserted")
	return inserted, nil
}

// DeleteOne removes the page at index.
func (s *Session) DeleteOne(index int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.store.DeleteOne(index); err != nil {
		return err
	}
	s.previews.Remove(index, index)
	s.log.Info().Int("page", index).Msg("page deleted")
	return nil
}

// DeleteSelected removes the selected page.
func (s *Session) DeleteSelected() (int, error) {
	index, ok := s.previews.Selected()
	if !ok {
		return 0, document.RangeError("delete page", errors.New("no page selected"))
	}
	return index, s.DeleteOne(index)
}

// DeleteRange removes pages start..end inclusive (0-based).
func (s *Session) DeleteRange(start, end int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.store.DeleteRange(start, end); err != nil {
		return err
	}
	s.previews.Remove(start, end)
	s.log.Info().Int("start", start).Int("end", end).Msg("page range deleted")
	return nil
}

// Rotate turns the page by delta degrees and re-renders its preview. If that
// render fails every preview is rebuilt instead. delta must be a multiple of 90;
// other values are a RangeError.
func (s *Session) Rotate(index, delta int) (int, error) {
	if err := s.editable(); err != nil {
		return 0, err
	}
	rotation, err := s.store.Rotate(index, delta)
	if err != nil {
		return 0, err
	}
	thumb, err := s.opts.Renderer.Render(s.doc, index)
	if err != nil {
		s.log.Warn().Err(err).Int("page", index).Msg("render after rotate failed")
		s.reloadPreviews()
		return rotation, nil
	}
	s.previews.Replace(index, thumb)
	return rotation, nil
}

// Rotation returns the rotation of page index.
func (s *Session) Rotation(index int) (int, error) {
	if s.doc == nil {
		return 0, ErrNoDocument
	}
	return s.store.Rotation(index)
}

// Save starts exporting the document, or rng of it, to path.
func (s *Session) Save(path string, rng PageRange) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.SaveActive() {
		return ErrBusy
	}
	if err := rng.Validate(s.store.Len()); err != nil {
		return err
	}
	s.save = StartSave(s.doc, path, rng, s.log)
	return nil
}
