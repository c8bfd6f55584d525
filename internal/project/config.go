package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"typecore/internal/trace"
)

// ConfigName is the project file looked up from the working directory.
const ConfigName = "typecore.toml"

// Config is the parsed typecore.toml. A zero Config means defaults.
type Config struct {
	Path  string      `toml:"-"`
	Root  string      `toml:"-"`
	Check CheckConfig `toml:"check"`
}

// CheckConfig holds the [check] table.
type CheckConfig struct {
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	TraceLevel     string   `toml:"trace_level"`
	Units          []string `toml:"units"` // globs relative to Root
}

// FindConfig walks up from startDir looking for typecore.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigName)
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

// LoadConfig reads and validates a typecore.toml.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("check", "jobs") && cfg.Check.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if meta.IsDefined("check", "max_diagnostics") && cfg.Check.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	if _, err := trace.ParseLevel(cfg.Check.TraceLevel); err != nil {
		return Config{}, fmt.Errorf("%s: [check].trace_level: %w", path, err)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Discover finds and loads the nearest typecore.toml. ok is false when none
// exists; the returned Config then holds defaults.
func Discover(startDir string) (Config, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return Config{}, false, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// UnitFiles expands [check].units into a sorted, duplicate-free file list.
// Without globs every *.toml next to the config except the config itself
// is a unit.
func (c Config) UnitFiles() ([]string, error) {
	globs := c.Check.Units
	if len(globs) == 0 {
		globs = []string{"*.toml"}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, g := range globs {
		pattern := g
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(c.Root, filepath.FromSlash(g))
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: bad unit glob %q: %w", c.Path, g, err)
		}
		for _, m := range matches {
			if filepath.Base(m) == ConfigName {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}
