// Package config discovers and decodes deoptlens.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"deoptlens/internal/source"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "deoptlens.toml"

// Config mirrors deoptlens.toml.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
	// Root is the directory relative paths resolve against.
	Root string `toml:"-"`

	Weave Weave  `toml:"weave"`
	Run   Run    `toml:"run"`
	Files []File `toml:"files"`
}

// Weave holds [weave].
type Weave struct {
	Audit   bool   `toml:"audit"`
	Columns string `toml:"columns"`
	Active  string `toml:"active"`
}

// Run holds [run].
type Run struct {
	Entries        string `toml:"entries"`
	OutDir         string `toml:"out_dir"`
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Cache          bool   `toml:"cache"`
}

// File is one [[files]] table: a highlighted document and the entries key
// it is annotated with.
type File struct {
	HTML   string `toml:"html"`
	Source string `toml:"source"`
	Out    string `toml:"out"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Weave: Weave{Columns: source.UTF16.String()},
		Run:   Run{Cache: true},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest config. Defaults are returned, with
// ok false, when there is none.
func Discover(startDir string) (cfg *Config, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := source.ParseColumnUnit(c.Weave.Columns); err != nil {
		return fmt.Errorf("[weave].columns: %w", err)
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must be >= 0, got %d", c.Run.Jobs)
	}
	if c.Run.MaxDiagnostics < 0 {
		return fmt.Errorf("[run].max_diagnostics must be >= 0, got %d", c.Run.MaxDiagnostics)
	}
	for i, f := range c.Files {
		if strings.TrimSpace(f.HTML) == "" {
			return fmt.Errorf("[[files]] #%d: missing html", i+1)
		}
	}
	return nil
}

// ColumnUnit returns the parsed [weave].columns.
func (c *Config) ColumnUnit() source.ColumnUnit {
	u, err := source.ParseColumnUnit(c.Weave.Columns)
	if err != nil {
		return source.UTF16
	}
	return u
}

// Resolve makes a config-relative path absolute. Empty and absolute paths,
// and paths of a config without a file, are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}
