package micropyc

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/anhlt/micropyc/codegen"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/manifest"
)

// Config controls one compiler run.
type Config struct {
	// OutputDir receives one generated .c file per module. Empty keeps
	// the generated sources in memory only.
	OutputDir string

	// CallbackCapacity bounds each module's callback registry; zero
	// selects the default.
	CallbackCapacity int
}

// Result is the outcome of a compiler run.
type Result struct {
	Modules []*codegen.GeneratedModule
	// Files lists the written paths, parallel to Modules, when an
	// output directory was configured.
	Files []string
}

// Compile lowers every module of a resolved declaration set and,
// when configured, writes the generated sources to disk.
func Compile(set *ir.DeclSet, cfg Config) (*Result, error) {
	log := codegen.Logger()
	res := &Result{}

	for _, m := range set.Modules {
		gm, err := codegen.AssembleModule(m, codegen.Options{
			CallbackCapacity: cfg.CallbackCapacity,
		})
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Name, err)
		}
		if derr := gm.Diagnostics.Err(); derr != nil {
			return nil, fmt.Errorf("module %s: %w", m.Name, derr)
		}
		res.Modules = append(res.Modules, gm)
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		for _, gm := range res.Modules {
			path := filepath.Join(cfg.OutputDir, gm.FileName)
			if err := os.WriteFile(path, []byte(gm.Source), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			res.Files = append(res.Files, path)
			log.Info("wrote module source",
				zap.String("module", gm.Name),
				zap.String("path", path))
		}
	}
	return res, nil
}

// CompileFile loads a CBOR declaration set from disk and compiles it.
func CompileFile(declsPath string, cfg Config) (*Result, error) {
	set, err := ir.LoadFile(declsPath)
	if err != nil {
		return nil, err
	}
	return Compile(set, cfg)
}

// CompileManifest runs the compiler as configured by a project
// manifest.
func CompileManifest(m *manifest.Manifest) (*Result, error) {
	return CompileFile(m.DeclsPath(), Config{
		OutputDir:        m.OutputDir(),
		CallbackCapacity: m.Callbacks.Capacity,
	})
}
