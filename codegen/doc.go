// Package codegen lowers typed declarations into MicroPython C modules.
//
// # Pipeline
//
//	Declarations → [Classify] → [Layout] → [Lower] → [Assemble] → C source
//
// For each free function the classifier picks a calling convention shape
// and the lowering emits one wrapper plus its registration descriptor:
//
//	Shape            Wrapper arguments                          Descriptor
//	───────────────────────────────────────────────────────────────────────────
//	Fixed(0..3)      one mp_obj_t per argument                  FUN_OBJ_{0..3}
//	Fixed(n>3)       size_t n_args, const mp_obj_t *args        FUN_OBJ_VAR_BETWEEN(n,n)
//	VarBetween(m,n)  size_t n_args, const mp_obj_t *args        FUN_OBJ_VAR_BETWEEN(m,n)
//	Var(m)           size_t n_args, const mp_obj_t *args        FUN_OBJ_VAR(m)
//	Kw(m)            n_args, pos_args, mp_map_t *kw_args        FUN_OBJ_KW(m)
//
// Classes lower to a prefix-compatible struct chain (the parent embedded
// as the first member), a flat per-class vtable of native function
// pointers, a static field descriptor table driving one generic
// attribute dispatcher, and optional print/equality hooks.
//
// The package is pure with respect to compiler state: lowering only
// builds text, and a failed declaration contributes a diagnostic instead
// of C. Diagnostics are collected per declaration so unrelated
// declarations keep compiling.
package codegen
