// Package ir defines the typed declaration set consumed by the code
// generator.
//
// Declarations are produced by an external stub parser and handed to the
// compiler either programmatically or as a canonical CBOR interchange
// file (see wire.go). The tree is immutable once resolved: the compiler
// reads it, never mutates it.
//
// A Module holds free functions, classes and extern bindings. Classes
// reference their parent by name in wire form; Resolve links the
// pointers and rejects unknown parents and inheritance cycles. All
// remaining validation (arity well-formedness, marshaling rules, layout
// conflicts) happens during code generation so that errors can be
// collected per declaration.
package ir
