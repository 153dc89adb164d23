// Package manifest handles skein.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/skein/compiler"
)

// FileName is the name of the configuration file.
const FileName = "skein.toml"

// DefaultImageOutput is the image path used when none is configured.
const DefaultImageOutput = "out.skbc"

// Manifest represents a skein.toml project configuration.
type Manifest struct {
	Project  Project        `toml:"project"`
	Compiler CompilerConfig `toml:"compiler"`
	Image    ImageConfig    `toml:"image"`
	Log      LogConfig      `toml:"log"`

	// Dir is the directory containing the skein.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// CompilerConfig selects compiler capabilities.
type CompilerConfig struct {
	Variadic     bool `toml:"variadic"`
	HoistDefines bool `toml:"hoist-defines"`
}

// ImageConfig configures image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// LogConfig configures logging. Verbosity follows commonlog: 0 is quiet,
// higher values are chattier. An empty File logs to stderr.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no skein.toml exists.
func Default() *Manifest {
	return &Manifest{
		Compiler: CompilerConfig{Variadic: true, HoistDefines: true},
		Image:    ImageConfig{Output: DefaultImageOutput},
	}
}

// Load parses a skein.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	// Start from defaults so absent keys keep them.
	m := Default()
	if _, err := toml.Decode(string(data), m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if m.Image.Output == "" {
		m.Image.Output = DefaultImageOutput
	}
	if m.Log.Verbosity < 0 {
		return nil, fmt.Errorf("%s: log verbosity must not be negative", path)
	}

	return m, nil
}

// FindAndLoad walks up from startDir to find a skein.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// CompilerOptions returns the compiler options the manifest selects.
func (m *Manifest) CompilerOptions() compiler.Options {
	return compiler.Options{Variadic: m.Compiler.Variadic}
}

// SessionOptions returns the session options the manifest selects.
func (m *Manifest) SessionOptions() []compiler.SessionOption {
	return []compiler.SessionOption{
		compiler.WithOptions(m.CompilerOptions()),
		compiler.WithHoisting(m.Compiler.HoistDefines),
	}
}

// ImagePath returns the absolute image output path.
func (m *Manifest) ImagePath() string {
	if filepath.IsAbs(m.Image.Output) {
		return m.Image.Output
	}
	return filepath.Join(m.Dir, m.Image.Output)
}

// LogPath returns the log file path, or nil to log to stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	p := m.Log.File
	if !filepath.IsAbs(p) {
		p = filepath.Join(m.Dir, p)
	}
	return &p
}
