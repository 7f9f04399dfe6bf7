package objmodel

// CScalar is the C-side type of an extern (already-native) function's
// parameter or return value.
type CScalar uint8

const (
	CVoid CScalar = iota
	CInt
	CUInt
	CInt8
	CUInt8
	CInt16
	CUInt16
	CInt32
	CUInt32
	CFloat
	CDouble
	CBool
	CStr
	CPtr
)

var scalarDecls = [...]string{
	CVoid:   "void",
	CInt:    "mp_int_t",
	CUInt:   "mp_uint_t",
	CInt8:   "int8_t",
	CUInt8:  "uint8_t",
	CInt16:  "int16_t",
	CUInt16: "uint16_t",
	CInt32:  "int32_t",
	CUInt32: "uint32_t",
	CFloat:  "float",
	CDouble: "mp_float_t",
	CBool:   "bool",
	CStr:    "const char *",
	CPtr:    "void *",
}

// CDecl returns the C declaration type.
func (s CScalar) CDecl() string {
	if int(s) < len(scalarDecls) {
		return scalarDecls[s]
	}
	return "void"
}

var scalarNames = [...]string{
	CVoid:   "void",
	CInt:    "int",
	CUInt:   "uint",
	CInt8:   "int8",
	CUInt8:  "uint8",
	CInt16:  "int16",
	CUInt16: "uint16",
	CInt32:  "int32",
	CUInt32: "uint32",
	CFloat:  "float",
	CDouble: "double",
	CBool:   "bool",
	CStr:    "str",
	CPtr:    "ptr",
}

func (s CScalar) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return "unknown"
}

// ScalarFromName maps a stub-level scalar name to its CScalar. The bool
// result is false for unknown names.
func ScalarFromName(name string) (CScalar, bool) {
	for i, n := range scalarNames {
		if n == name {
			return CScalar(i), true
		}
	}
	return CVoid, false
}
