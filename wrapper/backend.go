// Package wrapper generates the C++ wrapper that connects a kernel's
// software signature to its Verilator simulation model.
package wrapper

import (
	"bytes"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

// Kind selects the wrapper backend.
type Kind int

const (
	HandshakeFIRRTL Kind = iota
	Calyx
	Std
)

var kindNames = [...]string{
	HandshakeFIRRTL: "handshakeFIRRTL",
	Calyx:           "calyx",
	Std:             "std",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindNames lists the spellings accepted by ParseKind.
func KindNames() []string {
	return append([]string(nil), kindNames[:]...)
}

// ParseKind parses a backend name as used on the command line.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}

	return 0, errs.New(errs.PhaseValidate, errs.KindUnsupported).
		Detail("unknown wrapper type %q", s).
		Build()
}

// Inputs are the constructs a wrapper is generated from. Module may be nil
// for backends that do not wrap a hardware model.
type Inputs struct {
	Signature *ir.FunctionSignature
	Reference *ir.ReferenceFunction
	Module    *ir.HardwareModule
}

// backend is the capability set every wrapper backend provides.
type backend interface {
	// init checks that the inputs have the shape the backend wraps.
	init() error
	includes() []string
	emitPreamble(s *Spec) error
}

// Generate builds the wrapper spec of the given kind. The first failing step
// aborts generation; its error is returned unchanged and no spec is
// produced.
func Generate(kind Kind, in Inputs) (*Spec, error) {
	switch kind {
	case HandshakeFIRRTL:
		return wrap(&handshakeWrapper{in: in}, in)
	case Calyx, Std:
		return wrap(&unsupportedWrapper{kind: kind}, in)
	}

	return nil, errs.New(errs.PhaseValidate, errs.KindUnsupported).
		Detail("unknown wrapper type %d", int(kind)).
		Build()
}

// Render generates the wrapper and serializes it.
func Render(kind Kind, in Inputs) ([]byte, error) {
	spec, err := Generate(kind, in)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := spec.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func wrap[B backend](b B, in Inputs) (*Spec, error) {
	if err := b.init(); err != nil {
		return nil, err
	}

	s := &Spec{
		Includes: b.includes(),
	}
	if in.Signature != nil {
		s.Symbol = in.Signature.Name
	}

	if err := b.emitPreamble(s); err != nil {
		return nil, err
	}

	return s, nil
}

// unsupportedWrapper stands in for backends this build cannot generate.
type unsupportedWrapper struct {
	kind Kind
}

func (w *unsupportedWrapper) init() error {
	return errs.New(errs.PhaseValidate, errs.KindUnsupported).
		Detail("the %s wrapper is not available", w.kind).
		Build()
}

func (w *unsupportedWrapper) includes() []string { return nil }

func (w *unsupportedWrapper) emitPreamble(*Spec) error { return nil }
