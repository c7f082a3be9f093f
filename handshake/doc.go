// Package handshake resolves the valid/ready/data signals of a hardware
// module's handshake ports and expands memory arguments into their load and
// store port groups.
//
// Signal references use the Verilator spelling of a flattened bundle field,
// <port>_<field>, e.g. in0_valid or mem_ldAddr0_data.
package handshake
