// Package ringlog implements the bounded, wrap-around command store at the
// heart of the command log: a fixed number of newline-terminated commands,
// oldest-wins eviction, and offset translation from an absolute byte
// position to a (command index, intra-command offset) pair.
package ringlog

import (
	"errors"
	"sync"
)

// DefaultCapacity is the number of commands the log holds before the oldest
// is evicted on the next append. It matches the circular buffer capacity of
// the character driver this system generalizes.
const DefaultCapacity = 10

// ErrOutOfRange is returned by PositionOf when the requested command index
// or intra-command offset does not address a currently held byte.
var ErrOutOfRange = errors.New("ringlog: position out of range")

// Log is a fixed-capacity, ordered store of committed commands. The zero
// value is not usable; construct with New.
type Log struct {
	mu         sync.Mutex
	slots      [][]byte
	inIdx      int
	outIdx     int
	full       bool
	totalBytes int
}

// New creates a Log with the given slot capacity. Capacity must be >= 1.
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{slots: make([][]byte, capacity)}
}

// Append places cmd at the write cursor, evicting the oldest command first
// if the log is full. cmd is taken by reference; callers must not mutate it
// afterward.
func (l *Log) Append(cmd []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(cmd)
}

func (l *Log) appendLocked(cmd []byte) {
	if l.full {
		l.totalBytes -= len(l.slots[l.inIdx])
		l.slots[l.inIdx] = nil
	}

	l.slots[l.inIdx] = cmd
	l.totalBytes += len(cmd)

	wasFull := l.full
	l.inIdx = (l.inIdx + 1) % len(l.slots)
	if wasFull {
		l.outIdx = l.inIdx
	}
	if l.inIdx == l.outIdx {
		l.full = true
	}
}

// Count returns the number of commands currently held.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked()
}

func (l *Log) countLocked() int {
	if l.full {
		return len(l.slots)
	}
	n := l.inIdx - l.outIdx
	if n < 0 {
		n += len(l.slots)
	}
	return n
}

// TotalBytes returns the exact sum of sizes of all currently held commands.
func (l *Log) TotalBytes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalBytes
}

// ResolveOffset walks the log oldest to newest and returns the command and
// the intra-command offset that byte position charOffset falls on. It
// reports ok=false iff charOffset is negative, charOffset >= TotalBytes(),
// or the log is empty; a
// charOffset exactly equal to the total byte count never resolves, even
// though it is one past a valid position.
func (l *Log) ResolveOffset(charOffset int) (cmd []byte, intra int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolveOffsetLocked(charOffset)
}

func (l *Log) resolveOffsetLocked(charOffset int) ([]byte, int, bool) {
	if charOffset < 0 {
		return nil, 0, false
	}
	count := l.countLocked()
	idx := l.outIdx
	for i := 0; i < count; i++ {
		s := l.slots[idx]
		if charOffset < len(s) {
			return s, charOffset, true
		}
		charOffset -= len(s)
		idx = (idx + 1) % len(l.slots)
	}
	return nil, 0, false
}

// Iterate calls fn with each currently held command, oldest to newest. It
// stops early if fn returns false. Iterate takes the log's lock for its
// entire duration, so fn must not call back into the Log.
func (l *Log) Iterate(fn func(cmd []byte) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.countLocked()
	idx := l.outIdx
	for i := 0; i < count; i++ {
		if !fn(l.slots[idx]) {
			return
		}
		idx = (idx + 1) % len(l.slots)
	}
}

// Snapshot returns a copy of the currently held commands, oldest to newest.
func (l *Log) Snapshot() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.countLocked()
	out := make([][]byte, 0, count)
	idx := l.outIdx
	for i := 0; i < count; i++ {
		out = append(out, l.slots[idx])
		idx = (idx + 1) % len(l.slots)
	}
	return out
}

// PositionOf translates a (write_cmd, write_cmd_offset) coordinate, as
// issued by the out-of-band positioning request, into an absolute byte
// position within the logical concatenation of held commands. It takes the
// log's lock for its entire duration so the translation is atomic with
// respect to concurrent Append calls.
func (l *Log) PositionOf(writeCmd, writeCmdOffset int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.countLocked()
	if writeCmd < 0 || writeCmd >= count {
		return 0, ErrOutOfRange
	}

	idx := l.outIdx
	var pos int64
	for i := 0; i < writeCmd; i++ {
		pos += int64(len(l.slots[idx]))
		idx = (idx + 1) % len(l.slots)
	}

	target := l.slots[idx]
	if writeCmdOffset < 0 || writeCmdOffset >= len(target) {
		return 0, ErrOutOfRange
	}

	return pos + int64(writeCmdOffset), nil
}

// Cap returns the configured slot capacity N.
func (l *Log) Cap() int {
	return len(l.slots)
}
