// Command wrapgen generates C++ wrappers that drive Verilator models of
// handshake kernels.
package main

import "github.com/sarchlab/wrapgen/wrapgen/cmd"

func main() {
	cmd.Execute()
}
