package handshake

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

// PortRef names the signals of one handshake channel.
type PortRef struct {
	Name      string
	Ready     string
	Valid     string
	Data      string
	DataWidth int
}

// HasData reports whether the channel carries data.
func (p PortRef) HasData() bool {
	return p.Data != ""
}

// PortAt returns the handshake port at index, skipping clock and reset.
func PortAt(m *ir.HardwareModule, index int) (ir.Port, error) {
	ports := m.HandshakePorts()
	if index < 0 || index >= len(ports) {
		return ir.Port{}, errs.New(errs.PhaseResolve, errs.KindMalformedBundle).
			Symbol(m.Name).
			Detail("port index %d out of range, module has %d handshake ports",
				index, len(ports)).
			Build()
	}

	return ports[index], nil
}

// ResolvePort returns the signal references of the handshake port at index.
func ResolvePort(m *ir.HardwareModule, index int) (PortRef, error) {
	p, err := PortAt(m, index)
	if err != nil {
		return PortRef{}, err
	}

	ref, err := resolveChannel(p.Name, p.Fields)
	if err != nil {
		return PortRef{}, errs.WithSymbol(err, m.Name)
	}

	return ref, nil
}

// ResolveMemoryPort returns the signal references of one load or store group
// of a memory bundle.
func ResolveMemoryPort(p ir.Port, s MemSignal, i int) (PortRef, error) {
	f, ok := p.Field(s.Field(i))
	if !ok {
		return PortRef{}, errs.MissingSignal(errs.PhaseResolve, p.Name, s.Field(i))
	}

	ref, err := resolveChannel(s.Port(p.Name, i), f.Fields)
	if err != nil {
		return PortRef{}, err
	}

	if s.HasData() && !ref.HasData() {
		return PortRef{}, errs.MissingSignal(errs.PhaseResolve, ref.Name, DataField)
	}

	return ref, nil
}

func resolveChannel(name string, fields []ir.Field) (PortRef, error) {
	ref := PortRef{Name: name}

	found := map[string]ir.Field{}
	for _, f := range fields {
		found[f.Name] = f
	}

	if _, ok := found[ReadyField]; !ok {
		return PortRef{}, errs.MissingSignal(errs.PhaseResolve, name, ReadyField)
	}
	ref.Ready = Flatten(name, ReadyField)

	if _, ok := found[ValidField]; !ok {
		return PortRef{}, errs.MissingSignal(errs.PhaseResolve, name, ValidField)
	}
	ref.Valid = Flatten(name, ValidField)

	if d, ok := found[DataField]; ok {
		if d.IsBundle() || d.Width <= 0 {
			return PortRef{}, errs.New(errs.PhaseResolve, errs.KindMalformedBundle).
				Path(name).
				Detail("data signal must have a positive bit width").
				Build()
		}
		ref.Data = Flatten(name, DataField)
		ref.DataWidth = d.Width
	}

	return ref, nil
}

// DataWidth returns the width of the data signal of a nested bundle.
func DataWidth(f ir.Field) (int, error) {
	d, ok := f.Field(DataField)
	if !ok {
		return 0, errs.MissingSignal(errs.PhaseResolve, f.Name, DataField)
	}

	return d.Width, nil
}

// ResolveAddressWidth returns the data width of the first load or store
// address group inside a memory bundle.
func ResolveAddressWidth(p ir.Port) (int, error) {
	for _, f := range p.Fields {
		if !strings.HasPrefix(f.Name, LoadAddr.Prefix()) &&
			!strings.HasPrefix(f.Name, StoreAddr.Prefix()) {
			continue
		}

		w, err := DataWidth(f)
		if err != nil {
			return 0, err
		}

		if w <= 0 {
			return 0, errs.New(errs.PhaseResolve, errs.KindMalformedBundle).
				Path(p.Name, f.Name).
				Detail("address width must be positive, found %d", w).
				Build()
		}

		return w, nil
	}

	return 0, errs.New(errs.PhaseResolve, errs.KindMalformedBundle).
		Path(p.Name).
		Detail("found no %s or %s signal in memory bundle",
			LoadAddr.Prefix()+"#", StoreAddr.Prefix()+"#").
		Build()
}

// AddressWidthForLength returns the number of bits needed to address length
// elements, at least one.
func AddressWidthForLength(length int) int {
	if length <= 2 {
		return 1
	}
	return bits.Len(uint(length - 1))
}

func argPath(i int) string {
	return "arg" + strconv.Itoa(i)
}
