// Package gpio abstracts the input and output lines a transceiver is bound
// to. Pin identifiers are small integers; a Registry resolves them to
// physical lines (or to in-memory loopback lines for simulation).
package gpio

// InputPin reads the level of an input line.
type InputPin interface {
	Get() bool
}

// OutputPin drives the level of an output line.
type OutputPin interface {
	Set(level bool)
}
