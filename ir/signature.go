package ir

// FunctionSignature is the software-level signature of a kernel. The order
// of Args and Results defines the order of the data-carrying ports.
type FunctionSignature struct {
	Name    string
	Args    []Type
	Results []Type
}

// NumArgs returns the number of arguments.
func (f *FunctionSignature) NumArgs() int {
	return len(f.Args)
}

// NumResults returns the number of results.
func (f *FunctionSignature) NumResults() int {
	return len(f.Results)
}
