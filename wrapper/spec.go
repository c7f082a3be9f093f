package wrapper

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Alias is a C++ type alias.
type Alias struct {
	Name string
	Type string
}

// Statement is one generated constructor statement. Lines after the first
// are continuation lines and are indented one extra level.
type Statement struct {
	Lines []string
}

// Section is a group of statements preceded by comment lines.
type Section struct {
	Comments   []string
	Statements []Statement
}

// Class is the generated simulator class. Sections form the body of its
// default constructor.
type Class struct {
	Name     string
	Base     string
	Sections []Section
}

// Spec is a complete wrapper translation unit.
type Spec struct {
	Symbol    string
	Includes  []string
	Namespace string
	Aliases   []Alias
	Class     Class
	Trailer   []Alias
}

// Alias returns the type bound to alias name.
func (s *Spec) Alias(name string) (string, bool) {
	for _, a := range s.Aliases {
		if a.Name == name {
			return a.Type, true
		}
	}
	for _, a := range s.Trailer {
		if a.Name == name {
			return a.Type, true
		}
	}
	return "", false
}

// indentWriter tracks the indentation of emitted lines.
type indentWriter struct {
	buf    bytes.Buffer
	indent int
}

func (w *indentWriter) line(format string, args ...any) {
	if format == "" {
		w.buf.WriteByte('\n')
		return
	}

	w.buf.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// WriteTo serializes the spec as C++ source.
func (s *Spec) WriteTo(out io.Writer) (int64, error) {
	w := &indentWriter{}

	w.line("// Generated by wrapgen for '%s'. Do not edit.", s.Symbol)
	w.line("")

	for _, inc := range s.Includes {
		w.line("#include \"%s\"", inc)
	}
	w.line("")

	if s.Namespace != "" {
		w.line("using namespace %s;", s.Namespace)
		w.line("")
	}

	writeAliases(w, s.Aliases)
	w.line("")

	s.Class.write(w)
	w.line("")

	writeAliases(w, s.Trailer)

	return w.buf.WriteTo(out)
}

func writeAliases(w *indentWriter, aliases []Alias) {
	for _, a := range aliases {
		w.line("using %s = %s;", a.Name, a.Type)
	}
}

func (c *Class) write(w *indentWriter) {
	w.line("class %s : public %s {", c.Name, c.Base)
	w.line("public:")
	w.indent++

	w.line("%s() : %s() {", c.Name, c.Base)
	w.indent++

	for i, sec := range c.Sections {
		if i > 0 {
			w.line("")
		}

		for _, comment := range sec.Comments {
			w.line("// %s", comment)
		}

		for _, st := range sec.Statements {
			st.write(w)
		}
	}

	w.indent--
	w.line("}")

	w.indent--
	w.line("};")
}

func (st Statement) write(w *indentWriter) {
	for i, l := range st.Lines {
		if i == 1 {
			w.indent++
		}
		w.line("%s", l)
	}

	if len(st.Lines) > 1 {
		w.indent--
	}
}
