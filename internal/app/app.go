package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/pagedeck/internal/config"
	"github.com/five82/pagedeck/internal/editor"
	"github.com/five82/pagedeck/internal/logging"
	"github.com/five82/pagedeck/internal/prefs"
	"github.com/five82/pagedeck/internal/render"
	"github.com/five82/pagedeck/internal/ui"
)

// Options configure the pagedeck editor.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pagedeck/prefs.toml
	File       string // optional document to open on start
	LogLevel   string // overrides log_level from the config when set
}

// Run boots the editor TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to the UI, so logs only go to the file.
	log, closer, err := logging.New(logConfig(cfg, opts, uuid.NewString()))
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()
	log.Info().Str("file", opts.File).Msg("pagedeck starting")

	session := editor.NewSession(editor.Options{
		Renderer: Renderer(cfg),
		Logger:   &log,
	})
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("close document")
		}
	}()

	uiOpts := ui.Options{
		Context:   ctx,
		Session:   session,
		Config:    cfg,
		Logger:    log,
		Prefs:     prefs.Load(opts.PrefsPath),
		PrefsPath: opts.PrefsPath,
	}
	if opts.File != "" {
		if err := session.Open(opts.File); err != nil {
			log.Warn().Err(err).Str("path", opts.File).Msg("open failed")
			uiOpts.Notice = "Could not open " + opts.File + ": " + err.Error()
			uiOpts.NoticeErr = true
		}
	}

	err = ui.Run(uiOpts)
	log.Info().Err(err).Msg("pagedeck stopped")
	return err
}

// logConfig picks the file sink settings for the TUI, letting the command line
// level win over the config file.
func logConfig(cfg config.Config, opts Options, run string) logging.Config {
	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	return logging.Config{Level: level, File: cfg.LogFile, Session: run}
}

// Renderer builds the page renderer from the configured thumbnail box.
func Renderer(cfg config.Config) render.Renderer {
	return render.Renderer{
		MaxWidth:  cfg.ThumbWidth,
		MaxHeight: cfg.ThumbHeight,
		DPI:       cfg.RenderDPI,
	}
}

func orNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}
