package wrapper

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sarchlab/wrapgen/cpptype"
	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/handshake"
	"github.com/sarchlab/wrapgen/ir"
)

// Headers and namespace of the simulation runtime the wrapper targets.
const (
	SimInterfaceHeader = "circt-hls/Tools/hlt/Simulator/HandshakeSimInterface.h"
	SimDriverHeader    = "circt-hls/Tools/hlt/Simulator/SimDriver.h"
	IntegerHeader      = "cstdint"
	RuntimeNamespace   = "circt_hls"
)

const typeMismatchMsg = "Type mismatch between handshake data port type and " +
	"actual port type. This might be a verilator version issue"

// handshakeWrapper wraps a handshake kernel lowered to FIRRTL and simulated
// by Verilator.
type handshakeWrapper struct {
	in Inputs
}

func (w *handshakeWrapper) name() string {
	return w.in.Signature.Name
}

func (w *handshakeWrapper) init() error {
	sig, ref, mod := w.in.Signature, w.in.Reference, w.in.Module

	if sig == nil {
		return errs.New(errs.PhaseValidate, errs.KindInputShape).
			Detail("expected a function signature to wrap").
			Build()
	}

	if ref == nil || mod == nil {
		return errs.New(errs.PhaseValidate, errs.KindInputShape).
			Symbol(sig.Name).
			Detail("expected both a reference and a kernel operation for " +
				"wrapping a handshake simulator").
			Build()
	}

	if !isIdentifier(sig.Name) {
		return errs.New(errs.PhaseValidate, errs.KindInputShape).
			Symbol(sig.Name).
			Detail("symbol name is not a valid C++ identifier").
			Build()
	}

	if err := ref.CheckAgainst(sig); err != nil {
		return err
	}

	if err := mod.CheckPortCount(sig); err != nil {
		return err
	}

	return mod.CheckClockReset()
}

func (w *handshakeWrapper) includes() []string {
	return []string{
		"V" + w.name() + ".h",
		SimInterfaceHeader,
		SimDriverHeader,
		IntegerHeader,
	}
}

func (w *handshakeWrapper) emitPreamble(s *Spec) error {
	s.Namespace = RuntimeNamespace

	if err := w.emitIOTypes(s); err != nil {
		return err
	}

	s.Aliases = append(s.Aliases,
		Alias{Name: "TModel", Type: "V" + w.name()},
		Alias{
			Name: w.name() + "SimInterface",
			Type: "HandshakeSimInterface<TInput, TOutput, TModel>",
		},
	)

	class, err := w.emitSimulator()
	if err != nil {
		return err
	}
	s.Class = class

	s.Trailer = []Alias{{Name: "TSim", Type: w.name() + "Sim"}}

	return nil
}

func argAlias(i int) string { return "TArg" + strconv.Itoa(i) }

func resAlias(i int) string { return "TRes" + strconv.Itoa(i) }

func (w *handshakeWrapper) emitIOTypes(s *Spec) error {
	sig := w.in.Signature

	args := make([]string, 0, len(sig.Args))
	for i, t := range sig.Args {
		name, err := cpptype.Name(t)
		if err != nil {
			return errs.WithSymbol(err, sig.Name)
		}

		s.Aliases = append(s.Aliases, Alias{Name: argAlias(i), Type: name})
		args = append(args, argAlias(i))
	}
	s.Aliases = append(s.Aliases, Alias{Name: "TInput", Type: tuple(args)})

	results := make([]string, 0, len(sig.Results))
	for i, t := range sig.Results {
		name, err := cpptype.Name(t)
		if err != nil {
			return errs.WithSymbol(err, sig.Name)
		}

		s.Aliases = append(s.Aliases, Alias{Name: resAlias(i), Type: name})
		results = append(results, resAlias(i))
	}
	s.Aliases = append(s.Aliases, Alias{Name: "TOutput", Type: tuple(results)})

	return nil
}

func tuple(elems []string) string {
	s := "std::tuple<"
	for i, e := range elems {
		if i > 0 {
			s += ", "
		}
		s += e
	}
	return s + ">"
}

func (w *handshakeWrapper) emitSimulator() (Class, error) {
	sig, mod := w.in.Signature, w.in.Module

	class := Class{
		Name: w.name() + "Sim",
		Base: w.name() + "SimInterface",
	}

	class.Sections = append(class.Sections, Section{
		Comments: []string{"--- Generic Verilator interface"},
		Statements: []Statement{
			stmt("interface.clock = &dut->%s;", ir.ClockPort),
			stmt("interface.reset = &dut->%s;", ir.ResetPort),
		},
	})

	ctrl, err := w.emitControlPorts()
	if err != nil {
		return Class{}, err
	}
	class.Sections = append(class.Sections, ctrl)

	inputs := Section{Comments: []string{"--- Software interface", "- Input ports"}}
	for i, t := range sig.Args {
		sts, err := w.emitInputPort(t, i)
		if err != nil {
			return Class{}, errs.WithSymbol(err, mod.Name)
		}
		inputs.Statements = append(inputs.Statements, sts...)
	}
	class.Sections = append(class.Sections, inputs)

	outputs := Section{Comments: []string{"- Output ports"}}
	for i := range sig.Results {
		sts, err := w.emitOutputPort(i)
		if err != nil {
			return Class{}, errs.WithSymbol(err, mod.Name)
		}
		outputs.Statements = append(outputs.Statements, sts...)
	}
	class.Sections = append(class.Sections, outputs)

	return class, nil
}

// emitControlPorts wires the synthetic control ports. They never carry data,
// whatever the argument and result types are.
func (w *handshakeWrapper) emitControlPorts() (Section, error) {
	sig, mod := w.in.Signature, w.in.Module

	inCtrl, err := handshake.ResolvePort(mod, ir.InCtrlIndex(sig))
	if err != nil {
		return Section{}, err
	}

	outCtrl, err := handshake.ResolvePort(mod, ir.ResultIndex(sig, sig.NumResults()))
	if err != nil {
		return Section{}, err
	}

	return Section{
		Comments: []string{"--- Handshake interface"},
		Statements: []Statement{
			stmt("inCtrl = std::make_unique<HandshakeInPort>(&dut->%s, &dut->%s);",
				inCtrl.Ready, inCtrl.Valid),
			stmt("outCtrl = std::make_unique<HandshakeOutPort>(&dut->%s, &dut->%s);",
				outCtrl.Ready, outCtrl.Valid),
		},
	}, nil
}

func (w *handshakeWrapper) emitInputPort(t ir.Type, idx int) ([]Statement, error) {
	if ir.IsMemRef(t) {
		return w.emitExtMemPort(idx)
	}

	port, err := w.resolveDataPort(idx, t)
	if err != nil {
		return nil, err
	}

	Logger().Debug("wrapping input port",
		zap.String("symbol", w.name()),
		zap.Int("index", idx),
		zap.String("port", port.Name))

	dataType := argAlias(idx)
	return []Statement{
		typeAssert(dataType, port),
		stmt("addInputPort<HandshakeDataInPort<%s>>%s;", dataType, portCtor(port)),
	}, nil
}

func (w *handshakeWrapper) emitOutputPort(idx int) ([]Statement, error) {
	sig := w.in.Signature

	port, err := w.resolveDataPort(ir.ResultIndex(sig, idx), sig.Results[idx])
	if err != nil {
		return nil, err
	}

	Logger().Debug("wrapping output port",
		zap.String("symbol", w.name()),
		zap.Int("index", idx),
		zap.String("port", port.Name))

	dataType := resAlias(idx)
	return []Statement{
		typeAssert(dataType, port),
		stmt("addOutputPort<HandshakeDataOutPort<%s>>%s;", dataType, portCtor(port)),
	}, nil
}

// resolveDataPort resolves a scalar port and checks that its data signal
// maps to the same C++ type as t.
func (w *handshakeWrapper) resolveDataPort(index int, t ir.Type) (handshake.PortRef, error) {
	port, err := handshake.ResolvePort(w.in.Module, index)
	if err != nil {
		return port, err
	}

	if !port.HasData() {
		return port, errs.MissingSignal(errs.PhaseResolve, port.Name, handshake.DataField)
	}

	want, err := cpptype.Name(t)
	if err != nil {
		return port, err
	}

	got, err := cpptype.NameForWidth(port.DataWidth)
	if err != nil {
		return port, err
	}

	if got != want {
		return port, errs.New(errs.PhaseResolve, errs.KindTypeMismatch).
			Path(port.Name).
			Detail("data signal is %d bits (%s), signature type %s maps to %s",
				port.DataWidth, got, t, want).
			Build()
	}

	return port, nil
}

func (w *handshakeWrapper) emitExtMemPort(idx int) ([]Statement, error) {
	sig, ref, mod := w.in.Signature, w.in.Reference, w.in.Module

	desc, err := handshake.DescribeMemory(sig, ref, mod, idx)
	if err != nil {
		return nil, err
	}

	exp, err := handshake.ExpandMemory(mod, desc)
	if err != nil {
		return nil, err
	}

	elem, err := cpptype.Name(desc.Elem)
	if err != nil {
		return nil, err
	}

	addr, err := cpptype.NameForWidth(desc.AddrWidth)
	if err != nil {
		return nil, err
	}

	Logger().Debug("wrapping memory port",
		zap.String("symbol", w.name()),
		zap.Int("index", idx),
		zap.String("port", desc.Name),
		zap.Int("loads", desc.LoadCount),
		zap.Int("stores", desc.StoreCount))

	sts := []Statement{
		stmt("auto %s = addInputPort<HandshakeMemoryInterface<%s, %s>>(/*size=*/%d);",
			desc.Name, elem, addr, desc.Length),
	}

	for _, g := range exp.Loads {
		sts = append(sts, Statement{Lines: []string{
			desc.Name + "->addLoadPort(",
			fmt.Sprintf("std::make_shared<HandshakeDataInPort<%s>>%s,", elem, portCtor(g.Data)),
			fmt.Sprintf("std::make_shared<HandshakeDataOutPort<%s>>%s,", addr, portCtor(g.Addr)),
			fmt.Sprintf("std::make_shared<HandshakeInPort>%s);", portCtor(dataFree(g.Done))),
		}})
	}

	for _, g := range exp.Stores {
		sts = append(sts, Statement{Lines: []string{
			desc.Name + "->addStorePort(",
			fmt.Sprintf("std::make_shared<HandshakeDataOutPort<%s>>%s,", elem, portCtor(g.Data)),
			fmt.Sprintf("std::make_shared<HandshakeDataOutPort<%s>>%s,", addr, portCtor(g.Addr)),
			fmt.Sprintf("std::make_shared<HandshakeInPort>%s);", portCtor(dataFree(g.Done))),
		}})
	}

	return sts, nil
}

func stmt(format string, args ...any) Statement {
	return Statement{Lines: []string{fmt.Sprintf(format, args...)}}
}

// portCtor returns the constructor arguments of a handshake port object.
func portCtor(p handshake.PortRef) string {
	s := fmt.Sprintf("(\"%s\", &dut->%s, &dut->%s", p.Name, p.Ready, p.Valid)
	if p.HasData() {
		s += ", &dut->" + p.Data
	}
	return s + ")"
}

func dataFree(p handshake.PortRef) handshake.PortRef {
	p.Data = ""
	p.DataWidth = 0
	return p
}

// typeAssert guards a data port registration against template errors when
// the alias and the model's field type disagree.
func typeAssert(alias string, p handshake.PortRef) Statement {
	return stmt("static_assert(std::is_same<%s, typeof(dut->%s)>::value, \"%s\");",
		alias, p.Data, typeMismatchMsg)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
