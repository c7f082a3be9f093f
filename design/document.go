package design

import (
	"strconv"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

// document mirrors the YAML layout of a design file.
type document struct {
	Functions  []functionDoc  `yaml:"functions"`
	References []referenceDoc `yaml:"references"`
	Modules    []moduleDoc    `yaml:"modules"`
}

type functionDoc struct {
	Name      string   `yaml:"name"`
	Arguments []string `yaml:"arguments"`
	Results   []string `yaml:"results"`
}

type referenceDoc struct {
	Name      string   `yaml:"name"`
	Arguments []string `yaml:"arguments"`
	Results   []string `yaml:"results"`
	Ops       []opDoc  `yaml:"ops"`
}

type opDoc struct {
	Name     string `yaml:"name"`
	Operands []int  `yaml:"operands"`
	LdCount  int    `yaml:"ldCount"`
	StCount  int    `yaml:"stCount"`
}

type moduleDoc struct {
	Name  string    `yaml:"name"`
	Ports []portDoc `yaml:"ports"`
}

type portDoc struct {
	Name      string     `yaml:"name"`
	Direction string     `yaml:"direction"`
	Width     int        `yaml:"width"`
	Fields    []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name   string     `yaml:"name"`
	Flip   bool       `yaml:"flip"`
	Width  int        `yaml:"width"`
	Fields []fieldDoc `yaml:"fields"`
}

func (d *document) build(path string) (*File, error) {
	f := &File{
		Path:       path,
		functions:  make(map[string]*ir.FunctionSignature),
		references: make(map[string]*ir.ReferenceFunction),
		modules:    make(map[string]*ir.HardwareModule),
	}

	for _, fd := range d.Functions {
		if _, dup := f.functions[fd.Name]; dup {
			return nil, duplicate(path, fd.Name, FunctionSymbol)
		}

		fn, err := fd.build()
		if err != nil {
			return nil, err
		}
		f.functions[fd.Name] = fn
	}

	for _, rd := range d.References {
		if _, dup := f.references[rd.Name]; dup {
			return nil, duplicate(path, rd.Name, ReferenceSymbol)
		}

		r, err := rd.build()
		if err != nil {
			return nil, err
		}
		f.references[rd.Name] = r
	}

	for _, md := range d.Modules {
		if _, dup := f.modules[md.Name]; dup {
			return nil, duplicate(path, md.Name, ModuleSymbol)
		}
		f.modules[md.Name] = md.build()
	}

	return f, nil
}

func duplicate(path, name string, kind SymbolKind) error {
	return errs.New(errs.PhaseLoad, errs.KindDuplicate).
		Symbol(name).
		Detail("%s defined more than once in '%s'", kind, path).
		Build()
}

func parseTypes(symbol, what string, texts []string) ([]ir.Type, error) {
	types := make([]ir.Type, 0, len(texts))
	for i, s := range texts {
		t, err := ir.ParseType(s)
		if err != nil {
			return nil, errs.New(errs.PhaseLoad, errs.KindInputShape).
				Symbol(symbol).
				Path(what + strconv.Itoa(i)).
				Cause(err).
				Build()
		}
		types = append(types, t)
	}
	return types, nil
}

func (fd functionDoc) build() (*ir.FunctionSignature, error) {
	args, err := parseTypes(fd.Name, "arg", fd.Arguments)
	if err != nil {
		return nil, err
	}

	results, err := parseTypes(fd.Name, "res", fd.Results)
	if err != nil {
		return nil, err
	}

	return &ir.FunctionSignature{Name: fd.Name, Args: args, Results: results}, nil
}

func (rd referenceDoc) build() (*ir.ReferenceFunction, error) {
	fn, err := functionDoc{
		Name:      rd.Name,
		Arguments: rd.Arguments,
		Results:   rd.Results,
	}.build()
	if err != nil {
		return nil, err
	}

	r := &ir.ReferenceFunction{Name: rd.Name, Args: fn.Args, Results: fn.Results}
	for _, od := range rd.Ops {
		r.Ops = append(r.Ops, ir.Op{
			Name:       od.Name,
			Operands:   od.Operands,
			LoadCount:  od.LdCount,
			StoreCount: od.StCount,
		})
	}

	return r, nil
}

func (md moduleDoc) build() *ir.HardwareModule {
	m := &ir.HardwareModule{Name: md.Name}
	for _, pd := range md.Ports {
		m.Ports = append(m.Ports, ir.Port{
			Name:      pd.Name,
			Direction: ir.Direction(pd.Direction),
			Width:     pd.Width,
			Fields:    buildFields(pd.Fields),
		})
	}
	return m
}

func buildFields(docs []fieldDoc) []ir.Field {
	if len(docs) == 0 {
		return nil
	}

	fields := make([]ir.Field, 0, len(docs))
	for _, d := range docs {
		fields = append(fields, ir.Field{
			Name:   d.Name,
			Flip:   d.Flip,
			Width:  d.Width,
			Fields: buildFields(d.Fields),
		})
	}
	return fields
}
