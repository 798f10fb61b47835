package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/pagedeck/internal/document"
	"github.com/five82/pagedeck/internal/editor"
)

// ExportOptions describe one headless export.
type ExportOptions struct {
	Src   string
	Dst   string
	Range editor.PageRange // zero value exports every page

	Interval time.Duration
	Logger   *zerolog.Logger
	// Open defaults to document.Open.
	Open func(path string) (document.Document, error)
}

// Export copies Src, or a page range of it, to Dst through a SaveSession.
// No previews are rendered.
func Export(ctx context.Context, opts ExportOptions) (editor.SaveResult, error) {
	log := orNop(opts.Logger).With().Str("component", "export").Logger()
	open := opts.Open
	if open == nil {
		open = func(path string) (document.Document, error) { return document.Open(path) }
	}

	doc, err := open(opts.Src)
	if err != nil {
		return editor.SaveResult{}, err
	}
	defer func() { _ = doc.Close() }()

	if err := opts.Range.Validate(doc.PageCount()); err != nil {
		return editor.SaveResult{}, err
	}

	save := editor.StartSave(doc, opts.Dst, opts.Range, log)
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := ctx.Done()
	for {
		if res, ok := save.Poll(); ok {
			return res, res.Err
		}
		select {
		case <-done:
			log.Warn().Msg("interrupted; waiting for the save to finish")
			done = nil
		case <-ticker.C:
		}
	}
}
