// Package cpptype maps kernel types to the C++ types Verilator uses for the
// corresponding ports.
package cpptype

import (
	"io"
	"strconv"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

// MaxWidth is the widest port that maps to a scalar C++ integer.
const MaxWidth = 64

// NameForWidth returns the unsigned fixed-width integer type holding width
// bits. Verilator exposes every port as unsigned, so signedness never
// changes the mapping.
func NameForWidth(width int) (string, error) {
	if width <= 0 {
		return "", errs.UnsupportedType(errs.PhaseEmit,
			"i"+strconv.Itoa(width), "bit width must be positive")
	}

	if width > MaxWidth {
		return "", errs.UnsupportedType(errs.PhaseEmit,
			"i"+strconv.Itoa(width),
			"ports wider than "+strconv.Itoa(MaxWidth)+" bits are not supported")
	}

	bits := 8
	for bits < width {
		bits *= 2
	}

	return "uint" + strconv.Itoa(bits) + "_t", nil
}

// Name returns the C++ type of t.
func Name(t ir.Type) (string, error) {
	switch t := t.(type) {
	case ir.IntType:
		return NameForWidth(t.Width)
	case ir.IndexType:
		return NameForWidth(ir.IndexWidth)
	case ir.MemRefType:
		return memRefName(t)
	case nil:
		return "", errs.UnsupportedType(errs.PhaseEmit, "<nil>", "missing type")
	default:
		return "", errs.UnsupportedType(errs.PhaseEmit, t.String(),
			"no C++ mapping")
	}
}

func memRefName(t ir.MemRefType) (string, error) {
	if len(t.Shape) != 1 {
		return "", errs.UnsupportedType(errs.PhaseEmit, t.String(),
			"only unidimensional memories are supported")
	}

	if ir.IsMemRef(t.Elem) {
		return "", errs.UnsupportedType(errs.PhaseEmit, t.String(),
			"memory elements must be scalar")
	}

	elem, err := Name(t.Elem)
	if err != nil {
		return "", err
	}

	return elem + "*", nil
}

// Emit writes the C++ type of t to w.
func Emit(w io.Writer, t ir.Type) error {
	name, err := Name(t)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, name)
	return err
}

// EmitWidth writes the C++ type holding width bits to w.
func EmitWidth(w io.Writer, width int) error {
	name, err := NameForWidth(width)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, name)
	return err
}
