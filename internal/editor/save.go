package editor

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/five82/pagedeck/internal/document"
)

// PageRange is an inclusive 1-based export range. The zero value means all pages.
type PageRange struct {
	From int
	To   int
}

// All reports whether the range selects the whole document.
func (r PageRange) All() bool {
	return r.From == 0 && r.To == 0
}

// Len returns the number of pages in a bounded range.
func (r PageRange) Len() int {
	return r.To - r.From + 1
}

// Validate checks 1 <= From <= To <= count.
func (r PageRange) Validate(count int) error {
	if r.All() {
		return nil
	}
	if r.From < 1 || r.From > r.To || r.To > count {
		return document.RangeError("export range", fmt.Errorf("pages %d-%d outside 1-%d", r.From, r.To, count))
	}
	return nil
}

func (r PageRange) String() string {
	if r.All() {
		return "all"
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// SaveState is the lifecycle of a SaveSession.
type SaveState int

const (
	SaveIdle SaveState = iota
	SaveRunning
	SaveSucceeded
	SaveFailed
)

func (s SaveState) String() string {
	switch s {
	case SaveRunning:
		return "running"
	case SaveSucceeded:
		return "succeeded"
	case SaveFailed:
		return "failed"
	default:
		return "idle"
	}
}

// SaveResult is pushed exactly once by the save worker.
type SaveResult struct {
	Path  string
	Pages int
	Bytes int64
	Err   error
}

// SaveSession exports a document, or a page range of it, on a background
// goroutine. It cannot be cancelled once started.
type SaveSession struct {
	ID    string
	Path  string
	Range PageRange

	results Queue[SaveResult]
	done    chan struct{}
	started time.Time
	log     zerolog.Logger

	state  SaveState
	result SaveResult
}

// StartSave launches the export worker. The caller validates rng beforehand.
func StartSave(doc document.Document, path string, rng PageRange, log zerolog.Logger) *SaveSession {
	s := &SaveSession{
		ID:      uuid.NewString(),
		Path:    path,
		Range:   rng,
		done:    make(chan struct{}),
		started: time.Now(),
		state:   SaveRunning,
	}
	s.log = log.With().Str("session", s.ID).Str("kind", "save").Logger()
	s.log.Info().Str("path", path).Str("range", rng.String()).Msg("save started")
	go s.run(doc)
	return s
}

func (s *SaveSession) run(doc document.Document) {
	defer close(s.done)
	pages, n, err := export(doc, s.Path, s.Range)
	s.results.Push(SaveResult{Path: s.Path, Pages: pages, Bytes: n, Err: errors.WithStack(err)})
}

// Poll takes the result if the worker has published it.
func (s *SaveSession) Poll() (SaveResult, bool) {
	if s.state != SaveRunning {
		return SaveResult{}, false
	}
	res, ok := s.results.TryPop()
	if !ok {
		return SaveResult{}, false
	}
	s.result = res
	if res.Err != nil {
		s.state = SaveFailed
		s.log.Warn().Stack().Err(res.Err).Msg("save failed")
	} else {
		s.state = SaveSucceeded
		s.log.Info().Int("pages", res.Pages).Int64("bytes", res.Bytes).
			Dur("elapsed", time.Since(s.started)).Msg("save succeeded")
	}
	return res, true
}

func (s *SaveSession) Running() bool {
	return s.state == SaveRunning
}

func (s *SaveSession) State() SaveState {
	return s.state
}

// Result returns the consumed result once the session has finished.
func (s *SaveSession) Result() SaveResult {
	return s.result
}

// Wait blocks until the worker goroutine has exited.
func (s *SaveSession) Wait() {
	<-s.done
}

// export writes doc (or the range copy of it) to path and returns the page
// and byte counts. The transient range copy is closed whatever the outcome.
func export(doc document.Document, path string, rng PageRange) (int, int64, error) {
	target := doc
	if !rng.All() {
		sub, err := doc.Extract(rng.From-1, rng.To-1)
		if err != nil {
			return 0, 0, err
		}
		defer sub.Close()
		target = sub
	}
	n, err := writeFileAtomic(path, func(w io.Writer) error {
		return target.Save(w, document.ExportOptions)
	})
	if err != nil {
		return 0, n, err
	}
	return target.PageCount(), n, nil
}

// writeFileAtomic writes through a temp file in the destination directory and
// renames it into place, so a failed export never truncates an existing file.
// A new file gets 0644 (less the umask); a replaced file keeps its mode.
func writeFileAtomic(path string, write func(io.Writer) error) (int64, error) {
	pf, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return 0, document.IOError("create output", err)
	}
	defer func() { _ = pf.Cleanup() }()

	cw := newCountWriter(pf)
	if err := write(cw); err != nil {
		if document.KindOf(err) != "" {
			return cw.BytesWritten(), err
		}
		return cw.BytesWritten(), document.IOError("write output", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return cw.BytesWritten(), document.IOError("replace output", err)
	}
	return cw.BytesWritten(), nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func newCountWriter(w io.Writer) *countWriter {
	return &countWriter{w: w}
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (cw *countWriter) BytesWritten() int64 {
	return cw.n
}
