// Package ir describes the inputs of wrapper generation: software function
// signatures, handshake reference functions and hardware modules.
package ir

import (
	"strconv"
	"strings"

	"github.com/sarchlab/wrapgen/errs"
)

// A Type is the type of a function argument or result.
type Type interface {
	String() string
	isType()
}

// Signedness tells how an integer type is interpreted.
type Signedness int

const (
	Signless Signedness = iota
	Signed
	Unsigned
)

// IntType is a fixed-width integer.
type IntType struct {
	Width int
	Sign  Signedness
}

func (t IntType) isType() {}

func (t IntType) String() string {
	w := strconv.Itoa(t.Width)

	switch t.Sign {
	case Signed:
		return "si" + w
	case Unsigned:
		return "ui" + w
	default:
		return "i" + w
	}
}

// IndexWidth is the bit width an index value occupies in hardware.
const IndexWidth = 64

// IndexType is the target-dependent index type.
type IndexType struct{}

func (IndexType) isType() {}

func (IndexType) String() string { return "index" }

// NoneType is the type of control tokens. It carries no data.
type NoneType struct{}

func (NoneType) isType() {}

func (NoneType) String() string { return "none" }

// MemRefType is a statically shaped memory.
type MemRefType struct {
	Shape []int
	Elem  Type
}

func (t MemRefType) isType() {}

func (t MemRefType) String() string {
	var b strings.Builder

	b.WriteString("memref<")
	for _, d := range t.Shape {
		b.WriteString(strconv.Itoa(d))
		b.WriteByte('x')
	}
	if t.Elem != nil {
		b.WriteString(t.Elem.String())
	}
	b.WriteByte('>')

	return b.String()
}

// NumElements returns the number of elements of the memory.
func (t MemRefType) NumElements() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// IsMemRef reports whether t is a memory type.
func IsMemRef(t Type) bool {
	_, ok := t.(MemRefType)
	return ok
}

// BitWidth returns the width of an integer-like type, or 0 if the type has
// no scalar width.
func BitWidth(t Type) int {
	switch t := t.(type) {
	case IntType:
		return t.Width
	case IndexType:
		return IndexWidth
	default:
		return 0
	}
}

// ParseType parses the textual form of a type, e.g. "i32", "ui8", "index",
// "none" or "memref<8xi32>".
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)

	switch {
	case s == "index":
		return IndexType{}, nil
	case s == "none":
		return NoneType{}, nil
	case strings.HasPrefix(s, "memref<") && strings.HasSuffix(s, ">"):
		return parseMemRef(s[len("memref<") : len(s)-1])
	case strings.HasPrefix(s, "si"):
		return parseInt(s, s[2:], Signed)
	case strings.HasPrefix(s, "ui"):
		return parseInt(s, s[2:], Unsigned)
	case strings.HasPrefix(s, "i"):
		return parseInt(s, s[1:], Signless)
	}

	return nil, badType(s, "unknown type")
}

func parseInt(full, digits string, sign Signedness) (Type, error) {
	w, err := strconv.Atoi(digits)
	if err != nil || w <= 0 {
		return nil, badType(full, "integer width must be a positive number")
	}

	return IntType{Width: w, Sign: sign}, nil
}

func parseMemRef(body string) (Type, error) {
	t := MemRefType{}

	rest := body
	for {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 || i >= len(rest) || rest[i] != 'x' {
			break
		}

		d, err := strconv.Atoi(rest[:i])
		if err != nil {
			return nil, badType("memref<"+body+">", "dimension out of range")
		}
		t.Shape = append(t.Shape, d)
		rest = rest[i+1:]
	}

	elem, err := ParseType(rest)
	if err != nil {
		return nil, badType("memref<"+body+">", "bad element type")
	}
	t.Elem = elem

	return t, nil
}

func badType(s, why string) error {
	return errs.New(errs.PhaseLoad, errs.KindInputShape).
		Detail("cannot parse type %q: %s", s, why).
		Build()
}
