package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/pagedeck/internal/document"
)

// Config holds the user settings pagedeck reads at startup.
type Config struct {
	ThumbWidth   int
	ThumbHeight  int
	RenderDPI    float64
	PollMS       int
	SavePollMS   int
	DefaultPaper string
	Theme        string
	LogFile      string
	LogLevel     string
	Papers       document.PaperSet
}

const (
	defaultConfigPath  = "~/.config/pagedeck/config.toml"
	defaultLogFile     = "~/.local/state/pagedeck/pagedeck.log"
	defaultThumbWidth  = 280
	defaultThumbHeight = 380
	defaultRenderDPI   = 96
	defaultPollMS      = 50
	defaultSavePollMS  = 100
	defaultPaper       = "A4"
	defaultTheme       = "Nightfox"
	defaultLogLevel    = "info"
)

type paperSize struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ThumbWidth:   defaultThumbWidth,
		ThumbHeight:  defaultThumbHeight,
		RenderDPI:    defaultRenderDPI,
		PollMS:       defaultPollMS,
		SavePollMS:   defaultSavePollMS,
		DefaultPaper: defaultPaper,
		Theme:        defaultTheme,
		LogFile:      mustExpand(defaultLogFile),
		LogLevel:     defaultLogLevel,
		Papers:       document.DefaultPapers(),
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ThumbWidth   int                  `toml:"thumb_width"`
		ThumbHeight  int                  `toml:"thumb_height"`
		RenderDPI    float64              `toml:"render_dpi"`
		PollMS       int                  `toml:"poll_ms"`
		SavePollMS   int                  `toml:"save_poll_ms"`
		DefaultPaper string               `toml:"default_paper"`
		Theme        string               `toml:"theme"`
		LogFile      string               `toml:"log_file"`
		LogLevel     string               `toml:"log_level"`
		Paper        map[string]paperSize `toml:"paper"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if raw.ThumbWidth > 0 {
		cfg.ThumbWidth = raw.ThumbWidth
	}
	if raw.ThumbHeight > 0 {
		cfg.ThumbHeight = raw.ThumbHeight
	}
	if raw.RenderDPI > 0 {
		cfg.RenderDPI = raw.RenderDPI
	}
	if raw.PollMS > 0 {
		cfg.PollMS = raw.PollMS
	}
	if raw.SavePollMS > 0 {
		cfg.SavePollMS = raw.SavePollMS
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	for name, size := range raw.Paper {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, document.OriginalSize) {
			return Config{}, fmt.Errorf("parse config: paper name %q is reserved", name)
		}
		if size.Width <= 0 || size.Height <= 0 {
			return Config{}, fmt.Errorf("parse config: paper %q needs positive width and height", name)
		}
		cfg.Papers[name] = document.Paper{Name: name, Width: size.Width, Height: size.Height}
	}

	if v := strings.TrimSpace(raw.DefaultPaper); v != "" {
		if _, ok := cfg.Papers.Lookup(v); !ok {
			return Config{}, fmt.Errorf("parse config: unknown default_paper %q", v)
		}
		cfg.DefaultPaper = v
	}

	return cfg, nil
}

// Paper resolves DefaultPaper. A nil result means native image size.
func (c Config) Paper() *document.Paper {
	p, _ := c.Papers.Lookup(c.DefaultPaper)
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
