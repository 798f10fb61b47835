package editor

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/render"
)

// PageRenderer produces the thumbnail for one page.
type PageRenderer interface {
	Render(doc document.Document, index int) (*render.Thumbnail, error)
}

// LoadState is the lifecycle of a LoadSession as seen by its consumer.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadRunning
	LoadCompleted
	LoadCancelled
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadRunning:
		return "running"
	case LoadCompleted:
		return "completed"
	case LoadCancelled:
		return "cancelled"
	case LoadFailed:
		return "failed"
	default:
		return "idle"
	}
}

type loadItemKind int

const (
	pageRendered loadItemKind = iota
	loadComplete
)

// loadItem is one RenderQueue entry.
type loadItem struct {
	kind      loadItemKind
	index     int
	thumb     *render.Thumbnail
	cancelled bool
	err       error
}

// LoadSession renders every page of a document on a background goroutine and
// hands results to the interactive goroutine through a RenderQueue.
//
// Only the worker touches the document; only the consumer touches state,
// rendered and stale.
type LoadSession struct {
	ID    string
	doc   document.Document
	total int

	queue   Queue[loadItem]
	cancel  atomic.Bool
	done    chan struct{}
	started time.Time
	log     zerolog.Logger

	state    LoadState
	rendered int
	stale    bool
}

// StartLoad launches the worker for all pages of doc.
func StartLoad(doc document.Document, renderer PageRenderer, log zerolog.Logger) *LoadSession {
	s := &LoadSession{
		ID:      uuid.NewString(),
		doc:     doc,
		total:   doc.PageCount(),
		done:    make(chan struct{}),
		started: time.Now(),
		state:   LoadRunning,
	}
	s.log = log.With().Str("session", s.ID).Str("kind", "load").Logger()
	s.log.Info().Int("pages", s.total).Msg("load started")
	go s.run(renderer)
	return s
}

func (s *LoadSession) run(renderer PageRenderer) {
	defer close(s.done)
	for i := 0; i < s.total; i++ {
		if s.cancel.Load() {
			s.queue.Push(loadItem{kind: loadComplete, cancelled: true})
			return
		}
		thumb, err := renderer.Render(s.doc, i)
		if err != nil {
			s.queue.Push(loadItem{kind: loadComplete, err: errors.WithStack(err)})
			return
		}
		// A render in flight when cancellation arrives completes, but its
		// result is dropped.
		if s.cancel.Load() {
			thumb.Release()
			s.queue.Push(loadItem{kind: loadComplete, cancelled: true})
			return
		}
		s.queue.Push(loadItem{kind: pageRendered, index: i, thumb: thumb})
	}
	s.queue.Push(loadItem{kind: loadComplete})
}

// Cancel asks the worker to stop before its next page.
func (s *LoadSession) Cancel() {
	if s.cancel.CompareAndSwap(false, true) {
		s.log.Info().Msg("load cancel requested")
	}
}

// Cancelled reports whether Cancel has been called.
func (s *LoadSession) Cancelled() bool {
	return s.cancel.Load()
}

// Running reports whether the consumer has yet to drain the final LoadComplete.
func (s *LoadSession) Running() bool {
	return s.state == LoadRunning
}

func (s *LoadSession) State() LoadState {
	return s.state
}

// Progress returns pages applied by the consumer and the page total.
func (s *LoadSession) Progress() (int, int) {
	return s.rendered, s.total
}

// Wait blocks until the worker goroutine has exited.
func (s *LoadSession) Wait() {
	<-s.done
}

func (s *LoadSession) next() (loadItem, bool) {
	return s.queue.TryPop()
}

// finish applies the terminal item and returns the resulting state.
func (s *LoadSession) finish(item loadItem) LoadState {
	switch {
	case item.err != nil:
		s.state = LoadFailed
		s.log.Warn().Stack().Err(item.err).Int("rendered", s.rendered).Msg("load failed")
	case item.cancelled:
		s.state = LoadCancelled
		s.log.Info().Int("rendered", s.rendered).Bool("stale", s.stale).Msg("load cancelled")
	default:
		s.state = LoadCompleted
		s.log.Info().Int("rendered", s.rendered).Dur("elapsed", time.Since(s.started)).Msg("load completed")
	}
	return s.state
}
