// Package accumulator implements the per-writer staging buffer that defers
// a command's commit until a terminating newline is observed.
package accumulator

import "bytes"

// Terminator is the byte that commits a pending command.
const Terminator = '\n'

// Accumulator concatenates fed byte chunks until a terminator is seen. It
// holds at most one in-flight command; completing that command resets it to
// empty. An Accumulator is not safe for concurrent use — each writer
// (connection or char-device handle) owns its own instance.
type Accumulator struct {
	pending []byte
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Feed extends the pending buffer with chunk and scans the newly appended
// region for Terminator. If found, it returns the completed command — the
// pending bytes up to and including the terminator — and resets the
// accumulator. Bytes in chunk after the terminator are discarded; they do
// NOT start the next command. This matches the source behavior the spec
// preserves (see SPEC_FULL.md, Open Questions): a single write() call
// carrying more than one command loses everything after the first.
//
// If no terminator is found, Feed returns ok=false and retains chunk in the
// pending buffer for the next call.
func (a *Accumulator) Feed(chunk []byte) (cmd []byte, ok bool) {
	start := len(a.pending)
	a.pending = append(a.pending, chunk...)

	if i := bytes.IndexByte(a.pending[start:], Terminator); i >= 0 {
		end := start + i + 1
		cmd = a.pending[:end]
		a.pending = nil
		return cmd, true
	}

	return nil, false
}

// Reset discards any partial command, restoring the accumulator to empty.
func (a *Accumulator) Reset() {
	a.pending = nil
}

// Len reports the number of bytes currently buffered for the in-flight
// command.
func (a *Accumulator) Len() int {
	return len(a.pending)
}
