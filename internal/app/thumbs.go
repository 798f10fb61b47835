package app

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/editor"
	"github.com/five82/pagedeck/internal/render"
)

// ThumbsOptions describe one headless preview run.
type ThumbsOptions struct {
	Src    string
	OutDir string

	Renderer editor.PageRenderer
	Interval time.Duration
	Logger   *zerolog.Logger
	// Progress receives a progress bar when set, usually os.Stderr.
	Progress io.Writer
	// Open defaults to document.Open.
	Open func(path string) (document.Document, error)
}

// ThumbsResult summarises a preview run.
type ThumbsResult struct {
	Written []string
	Total   int
	State   editor.LoadState
}

// Thumbs runs a LoadSession over Src and writes each preview as a PNG into
// OutDir as it arrives. Cancelling ctx stops the load; the files written so
// far are kept.
func Thumbs(ctx context.Context, opts ThumbsOptions) (ThumbsResult, error) {
	log := orNop(opts.Logger).With().Str("component", "thumbs").Logger()
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return ThumbsResult{}, document.IOError("create output dir", err)
	}

	session := editor.NewSession(editor.Options{
		Renderer:     opts.Renderer,
		Logger:       &log,
		OpenDocument: opts.Open,
	})
	defer func() { _ = session.Close() }()

	if err := session.Open(opts.Src); err != nil {
		return ThumbsResult{}, err
	}

	res := ThumbsResult{Total: session.PageCount(), State: editor.LoadCompleted}
	var (
		bar      *progressbar.ProgressBar
		writeErr error
		loadErr  error
	)
	if opts.Progress != nil && res.Total > 0 {
		bar = progressbar.NewOptions(res.Total,
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription(filepath.Base(opts.Src)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)
	}

	err := Drive(ctx, session, opts.Interval, func(ev editor.Event) {
		switch ev.Kind {
		case editor.EventPageLoaded:
			if writeErr != nil {
				return
			}
			entry, ok := session.Previews().Entry(ev.Index)
			if !ok || entry.Thumb == nil {
				return
			}
			path := filepath.Join(opts.OutDir, thumbName(ev.Index, ev.Total))
			if err := writePNG(path, entry.Thumb); err != nil {
				writeErr = err
				session.CancelLoad()
				return
			}
			res.Written = append(res.Written, path)
			if bar != nil {
				_ = bar.Add(1)
			}
		case editor.EventLoadFinished:
			res.State = ev.Load
			loadErr = ev.Err
			log.Info().Int("written", len(res.Written)).Int("total", ev.Total).
				Str("state", ev.Load.String()).Msg("previews finished")
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	switch {
	case writeErr != nil:
		return res, writeErr
	case loadErr != nil:
		return res, loadErr
	}
	return res, err
}

// thumbName zero-pads the 1-based page number to the width of total.
func thumbName(index, total int) string {
	width := max(len(strconv.Itoa(total)), 3)
	return fmt.Sprintf("page-%0*d.png", width, index+1)
}

func writePNG(path string, thumb *render.Thumbnail) error {
	img := thumb.Image()
	if img == nil {
		return document.IOError("write thumbnail", fmt.Errorf("%s: preview already released", path))
	}
	f, err := os.Create(path)
	if err != nil {
		return document.IOError("write thumbnail", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return document.IOError("write thumbnail", err)
	}
	if err := f.Close(); err != nil {
		return document.IOError("write thumbnail", err)
	}
	return nil
}
