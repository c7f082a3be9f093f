package ir

import (
	"strconv"

	"github.com/sarchlab/wrapgen/errs"
)

// ExtMemoryOp is the name of the operation that connects a memory argument
// to its load and store ports.
const ExtMemoryOp = "handshake.extmemory"

// An Op is an operation inside a reference function that consumes some of
// the function's arguments.
type Op struct {
	Name       string
	Operands   []int
	LoadCount  int
	StoreCount int
}

// Uses reports whether the op consumes argument arg.
func (o Op) Uses(arg int) bool {
	for _, a := range o.Operands {
		if a == arg {
			return true
		}
	}
	return false
}

// ReferenceFunction is the handshake-level function the hardware module was
// lowered from. It keeps the argument order of the signature, appends the
// control token argument and result, and records how many load and store
// accesses are made against each memory argument.
type ReferenceFunction struct {
	Name    string
	Args    []Type
	Results []Type
	Ops     []Op
}

// Users returns the ops that consume argument arg, in body order.
func (r *ReferenceFunction) Users(arg int) []Op {
	var users []Op
	for _, op := range r.Ops {
		if op.Uses(arg) {
			users = append(users, op)
		}
	}
	return users
}

// MemoryDescriptor describes one memory argument after its consumer was
// located.
type MemoryDescriptor struct {
	Arg        int
	Name       string
	Elem       Type
	Length     int
	AddrWidth  int
	LoadCount  int
	StoreCount int
}

// ExternalMemory returns the single extmemory op consuming argument arg.
func (r *ReferenceFunction) ExternalMemory(arg int) (Op, error) {
	argName := "arg" + strconv.Itoa(arg)

	users := r.Users(arg)
	if len(users) != 1 {
		return Op{}, errs.New(errs.PhaseExpand, errs.KindConsumerCardinality).
			Symbol(r.Name).
			Path(argName).
			Detail("expected exactly 1 user of a memref argument, found %d",
				len(users)).
			Build()
	}

	op := users[0]
	if op.Name != ExtMemoryOp {
		return Op{}, errs.New(errs.PhaseExpand, errs.KindInputShape).
			Symbol(r.Name).
			Path(argName).
			Detail("memref argument is consumed by %q, expected %q",
				op.Name, ExtMemoryOp).
			Build()
	}

	if op.LoadCount < 0 || op.StoreCount < 0 {
		return Op{}, errs.New(errs.PhaseExpand, errs.KindInputShape).
			Symbol(r.Name).
			Path(argName).
			Detail("negative port count (ld=%d, st=%d)",
				op.LoadCount, op.StoreCount).
			Build()
	}

	return op, nil
}

// CheckAgainst verifies that r can serve as the reference of sig: it must
// cover every argument of sig, and memory arguments must stay memories.
func (r *ReferenceFunction) CheckAgainst(sig *FunctionSignature) error {
	if len(r.Args) < len(sig.Args) {
		return errs.New(errs.PhaseValidate, errs.KindInputShape).
			Symbol(r.Name).
			Detail("reference has %d arguments, signature has %d",
				len(r.Args), len(sig.Args)).
			Build()
	}

	for i, t := range sig.Args {
		if IsMemRef(t) && !IsMemRef(r.Args[i]) {
			return errs.New(errs.PhaseValidate, errs.KindInputShape).
				Symbol(r.Name).
				Path("arg" + strconv.Itoa(i)).
				Detail("signature has %s but reference has %s", t, r.Args[i]).
				Build()
		}
	}

	for _, op := range r.Ops {
		for _, a := range op.Operands {
			if a < 0 || a >= len(r.Args) {
				return errs.New(errs.PhaseValidate, errs.KindInputShape).
					Symbol(r.Name).
					Detail("op %q uses argument %d, function has %d",
						op.Name, a, len(r.Args)).
					Build()
			}
		}
	}

	return nil
}
