package ir

import (
	"github.com/sarchlab/wrapgen/errs"
)

// Direction of a port.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Names of the clock and reset ports of a hardware module.
const (
	ClockPort = "clock"
	ResetPort = "reset"
)

// A Field is one signal of a port bundle. A field either has a bit width or
// is itself a bundle.
type Field struct {
	Name   string
	Flip   bool
	Width  int
	Fields []Field
}

// IsBundle reports whether the field is a nested bundle.
func (f Field) IsBundle() bool {
	return len(f.Fields) > 0
}

// Field looks up a direct sub-field by name.
func (f Field) Field(name string) (Field, bool) {
	return lookupField(f.Fields, name)
}

// A Port is a named port of a hardware module. Handshake ports carry a
// bundle; clock and reset are plain single-bit ports.
type Port struct {
	Name      string
	Direction Direction
	Width     int
	Fields    []Field
}

// Field looks up a field of the port bundle by name.
func (p Port) Field(name string) (Field, bool) {
	return lookupField(p.Fields, name)
}

func lookupField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HardwareModule is a synthesized module with handshake ports.
type HardwareModule struct {
	Name  string
	Ports []Port
}

// Port looks up a port by name.
func (m *HardwareModule) Port(name string) (Port, bool) {
	for _, p := range m.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// HandshakePorts returns all ports except clock and reset, in declaration
// order.
func (m *HardwareModule) HandshakePorts() []Port {
	ports := make([]Port, 0, len(m.Ports))
	for _, p := range m.Ports {
		if p.Name == ClockPort || p.Name == ResetPort {
			continue
		}
		ports = append(ports, p)
	}
	return ports
}

// InCtrlIndex returns the handshake port index of the control input.
func InCtrlIndex(sig *FunctionSignature) int {
	return sig.NumArgs()
}

// ResultIndex returns the handshake port index of result idx. Index
// NumResults() is the control output.
func ResultIndex(sig *FunctionSignature, idx int) int {
	return InCtrlIndex(sig) + 1 + idx
}

// CheckPortCount verifies that the handshake ports of m are the arguments of
// sig plus the control input, followed by the results plus the control
// output.
func (m *HardwareModule) CheckPortCount(sig *FunctionSignature) error {
	ports := m.HandshakePorts()
	numIn := sig.NumArgs() + 1
	numOut := sig.NumResults() + 1

	if len(ports) != numIn+numOut {
		return errs.New(errs.PhaseValidate, errs.KindInputShape).
			Symbol(m.Name).
			Detail("expected %d input and %d output handshake ports, found %d ports",
				numIn, numOut, len(ports)).
			Build()
	}

	for i, p := range ports {
		want := In
		if i >= numIn {
			want = Out
		}

		if p.Direction != "" && p.Direction != want {
			return errs.New(errs.PhaseValidate, errs.KindInputShape).
				Symbol(m.Name).
				Path(p.Name).
				Detail("port %d should be an %s port, found %s",
					i, want, p.Direction).
				Build()
		}
	}

	return nil
}

// CheckClockReset verifies that clock and reset, when declared, are
// single-bit inputs. Verilator models always expose both, so a module that
// omits them is accepted.
func (m *HardwareModule) CheckClockReset() error {
	for _, name := range []string{ClockPort, ResetPort} {
		p, ok := m.Port(name)
		if !ok {
			continue
		}

		if len(p.Fields) > 0 || p.Width > 1 || p.Direction == Out {
			return errs.New(errs.PhaseValidate, errs.KindMalformedBundle).
				Symbol(m.Name).
				Path(name).
				Detail("%s must be a single-bit input", name).
				Build()
		}
	}
	return nil
}
