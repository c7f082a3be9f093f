package handshake

import (
	"github.com/sarchlab/wrapgen/cpptype"
	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

// MemoryPortGroup is one load or store access against a memory: a data
// channel, an address channel and a data-free done channel.
type MemoryPortGroup struct {
	Data PortRef
	Addr PortRef
	Done PortRef
}

// Expansion is a memory argument expanded into its port groups, in index
// order.
type Expansion struct {
	Desc   ir.MemoryDescriptor
	Loads  []MemoryPortGroup
	Stores []MemoryPortGroup
}

// DescribeMemory locates the consumer of memory argument arg in the
// reference function and combines its access counts with the memory's shape
// and the address width declared by the hardware module.
func DescribeMemory(
	sig *ir.FunctionSignature,
	ref *ir.ReferenceFunction,
	m *ir.HardwareModule,
	arg int,
) (ir.MemoryDescriptor, error) {
	memref, ok := sig.Args[arg].(ir.MemRefType)
	if !ok {
		return ir.MemoryDescriptor{}, errs.New(errs.PhaseExpand, errs.KindInputShape).
			Symbol(sig.Name).
			Path(argPath(arg)).
			Detail("expected a memref, found %s", sig.Args[arg]).
			Build()
	}

	if len(memref.Shape) != 1 {
		return ir.MemoryDescriptor{}, errs.New(errs.PhaseExpand, errs.KindUnsupportedType).
			Symbol(sig.Name).
			Path(argPath(arg)).
			Detail("only unidimensional memories are supported, found %s", memref).
			Build()
	}

	op, err := ref.ExternalMemory(arg)
	if err != nil {
		return ir.MemoryDescriptor{}, err
	}

	port, err := PortAt(m, arg)
	if err != nil {
		return ir.MemoryDescriptor{}, err
	}

	desc := ir.MemoryDescriptor{
		Arg:        arg,
		Name:       port.Name,
		Elem:       memref.Elem,
		Length:     memref.Shape[0],
		LoadCount:  op.LoadCount,
		StoreCount: op.StoreCount,
	}

	if desc.LoadCount+desc.StoreCount == 0 {
		desc.AddrWidth = AddressWidthForLength(desc.Length)
		if desc.AddrWidth > cpptype.MaxWidth {
			return ir.MemoryDescriptor{}, errs.New(errs.PhaseExpand, errs.KindUnsupportedType).
				Symbol(sig.Name).
				Path(argPath(arg)).
				Detail("%d elements cannot be addressed with %d bits",
					desc.Length, cpptype.MaxWidth).
				Build()
		}
		return desc, nil
	}

	desc.AddrWidth, err = ResolveAddressWidth(port)
	if err != nil {
		return ir.MemoryDescriptor{}, errs.WithSymbol(err, m.Name)
	}

	return desc, nil
}

// ExpandMemory resolves the load and store port groups of a described
// memory. Every group named by the descriptor must exist in the memory
// bundle with the expected widths.
func ExpandMemory(m *ir.HardwareModule, desc ir.MemoryDescriptor) (Expansion, error) {
	port, err := PortAt(m, desc.Arg)
	if err != nil {
		return Expansion{}, err
	}

	exp := Expansion{Desc: desc}

	for i := 0; i < desc.LoadCount; i++ {
		g, err := resolveGroup(port, desc, i, LoadData, LoadAddr, LoadDone)
		if err != nil {
			return Expansion{}, errs.WithSymbol(err, m.Name)
		}
		exp.Loads = append(exp.Loads, g)
	}

	for i := 0; i < desc.StoreCount; i++ {
		g, err := resolveGroup(port, desc, i, StoreData, StoreAddr, StoreDone)
		if err != nil {
			return Expansion{}, errs.WithSymbol(err, m.Name)
		}
		exp.Stores = append(exp.Stores, g)
	}

	return exp, nil
}

func resolveGroup(
	port ir.Port,
	desc ir.MemoryDescriptor,
	i int,
	data, addr, done MemSignal,
) (MemoryPortGroup, error) {
	refs := make([]PortRef, 0, 3)

	for _, s := range []MemSignal{data, addr, done} {
		ref, err := ResolveMemoryPort(port, s, i)
		if err != nil {
			return MemoryPortGroup{}, err
		}

		if s.HasData() {
			want := ir.BitWidth(desc.Elem)
			if s.IsAddress() {
				want = desc.AddrWidth
			}

			if err := checkWidth(ref, want); err != nil {
				return MemoryPortGroup{}, err
			}
		}

		refs = append(refs, ref)
	}

	return MemoryPortGroup{Data: refs[0], Addr: refs[1], Done: refs[2]}, nil
}

func checkWidth(p PortRef, want int) error {
	if p.DataWidth == want {
		return nil
	}

	return errs.New(errs.PhaseExpand, errs.KindTypeMismatch).
		Path(p.Name).
		Detail("data signal is %d bits wide, expected %d", p.DataWidth, want).
		Build()
}
