// Package errors provides structured error types for the micropyc compiler.
//
// Errors are categorized by Phase (where in compilation the error occurred)
// and Kind (error category). The Error type includes rich context: the
// declaration name, a path within it (parameter, field, method), the source
// type name involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseClassify, errors.KindMalformedSignature).
//		Decl("blend").
//		Path("alpha").
//		Detail("required parameter follows a defaulted parameter").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType(errors.PhaseMarshal, "blend", []string{"alpha"}, "complex")
//	err := errors.FieldCollision("BoundedCounter", "value", "Counter")
//
// All errors implement the standard error interface and support errors.Is/As.
// Compile-time errors are collected per declaration so that lowering of
// unrelated declarations continues (best-effort partial compilation).
package errors
