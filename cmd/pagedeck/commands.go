package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/five82/pagedeck/internal/app"
	"github.com/five82/pagedeck/internal/config"
	"github.com/five82/pagedeck/internal/editor"
	"github.com/five82/pagedeck/internal/logging"
)

type rootFlags struct {
	configPath string
	prefsPath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "pagedeck [file.pdf]",
		Short: "Page-by-page PDF editor for the terminal",
		Long: `pagedeck opens a PDF as a grid of page previews. Pages can be inserted from
other PDFs or images, deleted, rotated, and the whole document or a page range
saved to a new file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{
				ConfigPath: flags.configPath,
				PrefsPath:  flags.prefsPath,
				LogLevel:   flags.logLevel,
			}
			if len(args) == 1 {
				opts.File = args[0]
			}
			return app.Run(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path (default ~/.config/pagedeck/config.toml)")
	cmd.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "preferences file path (default ~/.config/pagedeck/prefs.toml; - keeps them unsaved)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log_level from the config (debug, info, warn, error)")

	cmd.AddCommand(newExportCmd(flags), newThumbsCmd(flags))
	return cmd
}

// cliSetup loads the config and builds a stderr logger for a subcommand.
func cliSetup(flags *rootFlags) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	log, _, err := logging.New(logging.Config{Level: level, Console: os.Stderr})
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("init logging: %w", err)
	}
	return cfg, log, nil
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "export SRC DST",
		Short: "Write a PDF, or a page range of it, to a new file",
		Long: `Export copies SRC to DST with content streams cleaned up and compressed.
With --from and --to only that inclusive 1-based page range is written;
page rotations are kept.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := cliSetup(flags)
			if err != nil {
				return err
			}
			rng := editor.PageRange{From: from, To: to}
			if (from == 0) != (to == 0) {
				return fmt.Errorf("--from and --to must be given together")
			}
			res, err := app.Export(cmd.Context(), app.ExportOptions{
				Src:      args[0],
				Dst:      args[1],
				Range:    rng,
				Interval: time.Duration(cfg.SavePollMS) * time.Millisecond,
				Logger:   &log,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d pages, %d bytes)\n", filepath.Base(res.Path), res.Pages, res.Bytes)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "first page to export, 1-based")
	cmd.Flags().IntVar(&to, "to", 0, "last page to export, inclusive")
	return cmd
}

func newThumbsCmd(flags *rootFlags) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "thumbs SRC OUTDIR",
		Short: "Render page previews of a PDF to PNG files",
		Long: `Thumbs renders every page of SRC at the configured thumbnail size and writes
OUTDIR/page-001.png and so on. Interrupting keeps the pages already written.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := cliSetup(flags)
			if err != nil {
				return err
			}
			opts := app.ThumbsOptions{
				Src:      args[0],
				OutDir:   args[1],
				Renderer: app.Renderer(cfg),
				Interval: time.Duration(cfg.PollMS) * time.Millisecond,
				Logger:   &log,
			}
			if !quiet {
				opts.Progress = os.Stderr
			}
			res, err := app.Thumbs(cmd.Context(), opts)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d of %d previews to %s\n", len(res.Written), res.Total, args[1])
			return err
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	return cmd
}
