package handshake

import "strconv"

// Field names of a handshake bundle.
const (
	ReadyField = "ready"
	ValidField = "valid"
	DataField  = "data"
)

// MemSignal is one of the port groups a memory bundle exposes per access.
type MemSignal int

const (
	LoadData MemSignal = iota
	LoadAddr
	LoadDone
	StoreData
	StoreAddr
	StoreDone
)

var memSignalPrefixes = [...]string{
	LoadData:  "ldData",
	LoadAddr:  "ldAddr",
	LoadDone:  "ldDone",
	StoreData: "stData",
	StoreAddr: "stAddr",
	StoreDone: "stDone",
}

// Prefix returns the field name prefix, e.g. "ldAddr".
func (s MemSignal) Prefix() string {
	return memSignalPrefixes[s]
}

// Field returns the name of the i-th field of this kind inside a memory
// bundle, e.g. "ldAddr0".
func (s MemSignal) Field(i int) string {
	return s.Prefix() + strconv.Itoa(i)
}

// Port returns the flattened name of the i-th field of memory mem, e.g.
// "mem_ldAddr0".
func (s MemSignal) Port(mem string, i int) string {
	return Flatten(mem, s.Field(i))
}

// HasData reports whether the group carries a data signal. Done groups only
// handshake.
func (s MemSignal) HasData() bool {
	return s != LoadDone && s != StoreDone
}

// IsAddress reports whether the group carries an address.
func (s MemSignal) IsAddress() bool {
	return s == LoadAddr || s == StoreAddr
}

// Flatten joins a port name and a field name the way Verilator flattens
// bundles.
func Flatten(port, field string) string {
	return port + "_" + field
}
