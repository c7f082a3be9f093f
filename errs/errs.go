package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates in which step of generation the error occurred.
type Phase string

const (
	PhaseLoad     Phase = "load"     // reading and decoding design documents
	PhaseValidate Phase = "validate" // structural checks on the inputs
	PhaseResolve  Phase = "resolve"  // locating ports and signals
	PhaseExpand   Phase = "expand"   // memory port expansion
	PhaseEmit     Phase = "emit"     // C++ emission
	PhasePersist  Phase = "persist"  // writing the output file
)

// Kind categorizes the error.
type Kind string

const (
	KindInputShape          Kind = "input_shape"
	KindUnsupportedType     Kind = "unsupported_type"
	KindConsumerCardinality Kind = "consumer_cardinality"
	KindMalformedBundle     Kind = "malformed_bundle"
	KindTypeMismatch        Kind = "type_mismatch"
	KindNotFound            Kind = "not_found"
	KindDuplicate           Kind = "duplicate"
	KindUnsupported         Kind = "unsupported"
	KindIO                  Kind = "io"
)

// Error is the error type returned by every generation step.
type Error struct {
	Phase  Phase
	Kind   Kind
	Symbol string
	Path   []string
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Symbol != "" {
		b.WriteString(" in '")
		b.WriteString(e.Symbol)
		b.WriteByte('\'')
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target has the same phase and kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Symbol sets the symbol being wrapped.
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Path sets the location inside the symbol, e.g. a port or argument.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	err := b.err
	return &err
}

// WithSymbol returns err with its symbol set, if err is an *Error that has
// none yet. Other errors are returned unchanged.
func WithSymbol(err error, symbol string) error {
	var e *Error
	if !errors.As(err, &e) || e.Symbol != "" {
		return err
	}

	cp := *e
	cp.Symbol = symbol
	return &cp
}

// UnsupportedType creates an error for a type with no C++ mapping.
func UnsupportedType(phase Phase, typ string, why string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedType,
		Detail: fmt.Sprintf("type %s: %s", typ, why),
	}
}

// MissingSignal creates an error for a signal absent from a port bundle.
func MissingSignal(phase Phase, port, signal string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedBundle,
		Path:   []string{port},
		Detail: fmt.Sprintf("bundle has no signal %q", signal),
	}
}

// NotFound creates a symbol lookup error.
func NotFound(phase Phase, symbol, where string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Symbol: symbol,
		Detail: fmt.Sprintf("found no definition in %s", where),
	}
}
