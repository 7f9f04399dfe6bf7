package codegen

import (
	"fmt"

	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
)

// maxFixedArgs is the largest arity with a dedicated fixed descriptor
// macro; larger fixed arities reuse the bounded-variadic convention
// with min == max.
const maxFixedArgs = 3

// ShapeKind is the calling-convention classification of a signature.
type ShapeKind uint8

const (
	// ShapeFixed is exactly N positional parameters, no defaults.
	ShapeFixed ShapeKind = iota
	// ShapeVarBetween is positional parameters where a suffix has defaults.
	ShapeVarBetween
	// ShapeVar has a *args parameter and no **kwargs.
	ShapeVar
	// ShapeKw has a **kwargs parameter (with or without *args).
	ShapeKw
)

var shapeNames = [...]string{
	ShapeFixed:      "fixed",
	ShapeVarBetween: "var_between",
	ShapeVar:        "var",
	ShapeKw:         "kw",
}

func (k ShapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return "unknown"
}

// Shape is the derived arity of a signature plus the bookkeeping each
// calling convention needs.
type Shape struct {
	Kind ShapeKind
	// Min is the required leading positional count; Max the total
	// positional count (equal to Min for Fixed, unbounded kinds keep
	// Max at the positional count for array sizing).
	Min, Max int
	// StarArgs / StarKwargs name the star parameters when present.
	StarArgs   string
	StarKwargs string
}

func (s Shape) String() string {
	switch s.Kind {
	case ShapeVarBetween:
		return fmt.Sprintf("var_between(%d,%d)", s.Min, s.Max)
	case ShapeVar:
		return fmt.Sprintf("var(%d)", s.Min)
	case ShapeKw:
		return fmt.Sprintf("kw(%d)", s.Min)
	default:
		return fmt.Sprintf("fixed(%d)", s.Min)
	}
}

// Classify computes the calling-convention shape of a signature.
//
// Kwargs capture is checked first because its presence forces the most
// general convention regardless of the other parameter shapes, then
// star-args, then defaults, then fixed. Exactly one shape applies to
// every well-formed signature.
//
// A required positional parameter following a defaulted one is rejected
// as malformed, as is any parameter after **kwargs, a second star of
// either kind, or a positional parameter after *args.
func Classify(sig *ir.Signature) (Shape, error) {
	var positional, required int
	var sawDefault bool
	var starArgs, starKwargs string

	for _, p := range sig.Params {
		switch p.Role {
		case ir.StarKwargs:
			if starKwargs != "" {
				return Shape{}, errors.MalformedSignature(sig.Name, []string{p.Name}, "multiple **kwargs parameters")
			}
			starKwargs = p.Name

		case ir.StarArgs:
			if starKwargs != "" {
				return Shape{}, errors.MalformedSignature(sig.Name, []string{p.Name}, "*args after **kwargs")
			}
			if starArgs != "" {
				return Shape{}, errors.MalformedSignature(sig.Name, []string{p.Name}, "multiple *args parameters")
			}
			starArgs = p.Name

		default:
			if starArgs != "" || starKwargs != "" {
				return Shape{}, errors.MalformedSignature(sig.Name, []string{p.Name}, "positional parameter after a star parameter")
			}
			positional++
			if p.Default != nil {
				sawDefault = true
			} else {
				if sawDefault {
					return Shape{}, errors.MalformedSignature(sig.Name, []string{p.Name}, "required parameter follows a defaulted parameter")
				}
				required++
			}
		}
	}

	switch {
	case starKwargs != "":
		return Shape{Kind: ShapeKw, Min: required, Max: positional, StarArgs: starArgs, StarKwargs: starKwargs}, nil
	case starArgs != "":
		return Shape{Kind: ShapeVar, Min: required, Max: positional, StarArgs: starArgs}, nil
	case sawDefault:
		return Shape{Kind: ShapeVarBetween, Min: required, Max: positional}, nil
	default:
		return Shape{Kind: ShapeFixed, Min: positional, Max: positional}, nil
	}
}

// PositionalParams returns the positional parameters of a signature in
// declaration order, excluding star forms.
func PositionalParams(sig *ir.Signature) []ir.Param {
	out := make([]ir.Param, 0, len(sig.Params))
	for _, p := range sig.Params {
		if p.Role == ir.Positional {
			out = append(out, p)
		}
	}
	return out
}
