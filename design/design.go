// Package design loads design documents: YAML files that hold the function
// signatures, handshake reference functions and hardware modules wrappers
// are generated from.
package design

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

// Stdin is the path that makes Load read standard input.
const Stdin = "-"

// SymbolKind tells which section of a document defines a symbol.
type SymbolKind string

const (
	FunctionSymbol  SymbolKind = "function"
	ReferenceSymbol SymbolKind = "reference"
	ModuleSymbol    SymbolKind = "module"
)

// Symbol is a named definition of a document.
type Symbol struct {
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`
}

// File is a parsed design document.
type File struct {
	Path string

	functions  map[string]*ir.FunctionSignature
	references map[string]*ir.ReferenceFunction
	modules    map[string]*ir.HardwareModule
}

// Load reads and parses the design document at path.
func Load(path string) (*File, error) {
	var (
		data []byte
		err  error
	)

	if path == Stdin {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, errs.New(errs.PhaseLoad, errs.KindIO).
			Cause(errors.Wrapf(err, "could not open input file '%s'", path)).
			Build()
	}

	return Parse(path, data)
}

// Parse parses a design document. Path is only used in messages.
func Parse(path string, data []byte) (*File, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, shapeError(path, errors.Wrap(err, "decoding YAML"))
	}

	if raw == nil {
		return nil, errs.New(errs.PhaseLoad, errs.KindInputShape).
			Detail("found no definitions in input file '%s'", path).
			Build()
	}

	v, err := getValidator()
	if err != nil {
		return nil, err
	}

	if err := v.validate(raw); err != nil {
		return nil, shapeError(path, err)
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, shapeError(path, errors.Wrap(err, "decoding design"))
	}

	f, err := doc.build(path)
	if err != nil {
		return nil, err
	}

	Logger().Debug("loaded design",
		zap.String("path", path),
		zap.Int("functions", len(f.functions)),
		zap.Int("references", len(f.references)),
		zap.Int("modules", len(f.modules)))

	return f, nil
}

func shapeError(path string, cause error) error {
	return errs.New(errs.PhaseLoad, errs.KindInputShape).
		Detail("invalid design document '%s'", path).
		Cause(cause).
		Build()
}

// Function returns the function signature named name.
func (f *File) Function(name string) (*ir.FunctionSignature, error) {
	if fn, ok := f.functions[name]; ok {
		return fn, nil
	}
	return nil, f.notFound(name, FunctionSymbol)
}

// Reference returns the reference function named name.
func (f *File) Reference(name string) (*ir.ReferenceFunction, error) {
	if r, ok := f.references[name]; ok {
		return r, nil
	}
	return nil, f.notFound(name, ReferenceSymbol)
}

// Module returns the hardware module named name.
func (f *File) Module(name string) (*ir.HardwareModule, error) {
	if m, ok := f.modules[name]; ok {
		return m, nil
	}
	return nil, f.notFound(name, ModuleSymbol)
}

// Definition returns whatever the document defines under name, looking at
// functions, references and modules in that order.
func (f *File) Definition(name string) (any, bool) {
	if fn, ok := f.functions[name]; ok {
		return fn, true
	}
	if r, ok := f.references[name]; ok {
		return r, true
	}
	if m, ok := f.modules[name]; ok {
		return m, true
	}
	return nil, false
}

// Symbols lists every definition, sorted by kind and name.
func (f *File) Symbols() []Symbol {
	var syms []Symbol
	for name := range f.functions {
		syms = append(syms, Symbol{Name: name, Kind: FunctionSymbol})
	}
	for name := range f.references {
		syms = append(syms, Symbol{Name: name, Kind: ReferenceSymbol})
	}
	for name := range f.modules {
		syms = append(syms, Symbol{Name: name, Kind: ModuleSymbol})
	}

	sort.Slice(syms, func(i, j int) bool {
		if syms[i].Kind != syms[j].Kind {
			return syms[i].Kind < syms[j].Kind
		}
		return syms[i].Name < syms[j].Name
	})

	return syms
}

func (f *File) notFound(name string, kind SymbolKind) error {
	return errs.NotFound(errs.PhaseLoad, name,
		"the "+string(kind)+"s of '"+f.Path+"'")
}
