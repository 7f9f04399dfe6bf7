// Package micropyc compiles typed declaration sets into C extension
// modules for MicroPython's tagged-pointer object model.
//
// The compiler takes signatures and class descriptors produced by an
// external stub parser and deterministically emits one C translation
// unit per logical module: argument-marshaling wrappers, struct
// layouts, dispatch tables, attribute accessors and the registration
// tables that bind everything to the runtime.
//
// # Architecture Overview
//
// The repository is organized into several packages with distinct
// responsibilities:
//
//	micropyc/            Root package with the Compile entry points
//	├── objmodel/        Word encoding contract: tags, immediates, scalars
//	├── ir/              Declaration tree, resolution, CBOR interchange
//	├── codegen/         Lowering and C emission
//	├── manifest/        micropyc.toml project configuration
//	├── errors/          Structured error types for diagnostics
//	└── cmd/micropyc/    Command-line compiler and declaration browser
//
// # Quick Start
//
// Compile a declaration set loaded from disk:
//
//	set, err := ir.LoadFile("decls.cbor")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := micropyc.Compile(set, micropyc.Config{OutputDir: "build"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range res.Files {
//	    fmt.Println("wrote", f)
//	}
//
// # Value Encoding
//
// Generated code targets a machine-word value encoding:
//
//   - small ints: value shifted left once, low bit set
//   - interned strings: index shifted left three, low bits 010
//   - immediates (none/false/true): low bits 110
//   - heap pointers: 8-byte aligned words with all low bits clear
//
// The objmodel package is the single source of truth for this
// encoding; every emitted conversion goes through its accessors.
package micropyc
