package codegen

import (
	"regexp"
	"strings"
)

var cReservedWords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true,
	"else": true, "enum": true, "extern": true, "float": true, "for": true,
	"goto": true, "if": true, "int": true, "long": true, "register": true,
	"return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true,
	"union": true, "unsigned": true, "void": true, "volatile": true,
	"while": true, "inline": true, "restrict": true,
	"_Bool": true, "_Complex": true, "_Imaginary": true,
}

var invalidIdentChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeName turns an arbitrary declaration name into a valid C
// identifier, avoiding C reserved words.
func sanitizeName(name string) string {
	result := invalidIdentChars.ReplaceAllString(name, "_")
	if result != "" && result[0] >= '0' && result[0] <= '9' {
		result = "_" + result
	}
	if cReservedWords[result] {
		result = result + "_"
	}
	return result
}

// cName builds the C symbol for a module-level declaration.
func cName(module, decl string) string {
	return sanitizeName(module) + "_" + sanitizeName(decl)
}

// methodCName builds the C symbol for a class method.
func methodCName(module, class, method string) string {
	return sanitizeName(module) + "_" + sanitizeName(class) + "_" + sanitizeName(method)
}

// cStringLit renders a Go string as a C string literal.
func cStringLit(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
