package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/anhlt/micropyc"
	"github.com/anhlt/micropyc/codegen"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/manifest"
)

func main() {
	var (
		manifestDir = flag.String("manifest", "", "Directory containing micropyc.toml")
		declsFile   = flag.String("decls", "", "Path to CBOR declaration set")
		outDir      = flag.String("out", "", "Output directory for generated C")
		callbacks   = flag.Int("callbacks", 0, "Callback registry capacity (0 = default)")
		list        = flag.Bool("list", false, "List declarations and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose (debug) logging")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		codegen.SetLogger(log)
	}

	if err := run(*manifestDir, *declsFile, *outDir, *callbacks, *list, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(manifestDir, declsFile, outDir string, callbacks int, listOnly, interactive bool) error {
	cfg := micropyc.Config{OutputDir: outDir, CallbackCapacity: callbacks}

	// An explicit -decls wins; otherwise the manifest (given or
	// discovered) supplies the input and output settings.
	if declsFile == "" {
		m, err := loadManifest(manifestDir)
		if err != nil {
			return err
		}
		if m == nil {
			fmt.Fprintln(os.Stderr, "Usage: micropyc -decls <decls.cbor> [-out dir]")
			fmt.Fprintln(os.Stderr, "       micropyc -manifest <dir>")
			fmt.Fprintln(os.Stderr, "       micropyc -decls <decls.cbor> -list")
			fmt.Fprintln(os.Stderr, "       micropyc -decls <decls.cbor> -i  (interactive mode)")
			os.Exit(1)
		}
		declsFile = m.DeclsPath()
		if cfg.OutputDir == "" {
			cfg.OutputDir = m.OutputDir()
		}
		if cfg.CallbackCapacity == 0 {
			cfg.CallbackCapacity = m.Callbacks.Capacity
		}
	}

	set, err := ir.LoadFile(declsFile)
	if err != nil {
		return fmt.Errorf("load declarations: %w", err)
	}

	if listOnly {
		printDecls(set)
		return nil
	}

	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(declsFile, set, cfg)
	}

	res, err := micropyc.Compile(set, cfg)
	if err != nil {
		return err
	}
	for i, gm := range res.Modules {
		if i < len(res.Files) {
			fmt.Printf("%s -> %s\n", gm.Name, res.Files[i])
		} else {
			fmt.Printf("%s (%d bytes, not written)\n", gm.Name, len(gm.Source))
		}
	}
	return nil
}

func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return manifest.FindAndLoad(wd)
}

func printDecls(set *ir.DeclSet) {
	for _, m := range set.Modules {
		fmt.Printf("module %s\n", m.Name)
		for i := range m.Functions {
			fmt.Printf("  func %s\n", formatSignature(&m.Functions[i]))
		}
		for _, e := range m.Externs {
			fmt.Printf("  extern %s -> %s\n", e.Name, e.CName)
		}
		for _, c := range m.Classes {
			parent := ""
			if c.Parent != "" {
				parent = "(" + c.Parent + ")"
			}
			fmt.Printf("  class %s%s\n", c.Name, parent)
			for _, f := range c.Fields {
				fmt.Printf("    field %s: %s\n", f.Name, f.Type)
			}
			for i := range c.Methods {
				fmt.Printf("    method %s\n", formatSignature(&c.Methods[i].Signature))
			}
		}
	}
}

func formatSignature(sig *ir.Signature) string {
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		name := p.Name
		switch p.Role {
		case ir.StarArgs:
			name = "*" + name
		case ir.StarKwargs:
			name = "**" + name
		}
		params[i] = name + ": " + p.Type
	}
	out := fmt.Sprintf("%s(%s)", sig.Name, strings.Join(params, ", "))
	if sig.Return != "" && sig.Return != "None" {
		out += " -> " + sig.Return
	}
	return out
}
