// Package manifest handles micropyc.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file the loader looks for.
const FileName = "micropyc.toml"

// Manifest represents a micropyc.toml project configuration.
type Manifest struct {
	Project   Project   `toml:"project"`
	Input     Input     `toml:"input"`
	Output    Output    `toml:"output"`
	Callbacks Callbacks `toml:"callbacks"`

	// Dir is the directory containing the micropyc.toml file (set at
	// load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Input configures where declaration sets are read from.
type Input struct {
	// Decls is the CBOR declaration-set file produced by the stub
	// parser.
	Decls string `toml:"decls"`
}

// Output configures generated-code placement and build hints.
type Output struct {
	Dir         string   `toml:"dir"`
	IncludeDirs []string `toml:"include-dirs"`
	Defines     []string `toml:"defines"`
}

// Callbacks bounds the generated callback registry.
type Callbacks struct {
	Capacity int `toml:"capacity"`
}

// Load parses a micropyc.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Output.Dir == "" {
		m.Output.Dir = "build"
	}
	if m.Input.Decls == "" {
		m.Input.Decls = "decls.cbor"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a micropyc.toml file,
// then loads and returns the manifest. Returns nil if no manifest is
// found.
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

// DeclsPath returns the absolute path of the declaration-set input.
func (m *Manifest) DeclsPath() string {
	if filepath.IsAbs(m.Input.Decls) {
		return m.Input.Decls
	}
	return filepath.Join(m.Dir, m.Input.Decls)
}

// OutputDir returns the absolute path of the generated-code directory.
func (m *Manifest) OutputDir() string {
	if filepath.IsAbs(m.Output.Dir) {
		return m.Output.Dir
	}
	return filepath.Join(m.Dir, m.Output.Dir)
}
