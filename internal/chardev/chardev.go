// Package chardev exposes a ringlog.Log as a seekable byte object for
// in-process consumers, generalizing the character-device surface of the
// original coursework: byte-addressable reads that span command
// boundaries, per-handle write accumulation, whence-relative seeking, and
// one out-of-band positioning request.
package chardev

import (
	"context"
	"errors"
	"io"

	"github.com/commandlogd/commandlogd/internal/accumulator"
	"github.com/commandlogd/commandlogd/internal/positioner"
	"github.com/commandlogd/commandlogd/internal/ringlog"
)

// Errors surfaced by the char interface, named after the POSIX-ish error
// kinds in spec.md §7.
var (
	ErrInvalidArgument        = errors.New("chardev: invalid argument")
	ErrInterrupted            = errors.New("chardev: interrupted")
	ErrInappropriateOperation = errors.New("chardev: inappropriate operation")
)

// Whence values, matching os.Seek*.
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// PositionRequest is the out-of-band positioning coordinate, shaped exactly
// like the original driver's `struct aesd_seekto`.
type PositionRequest struct {
	WriteCmd       uint32
	WriteCmdOffset uint32
}

// OpSeekTo is the only accepted out-of-band request code; any other code
// passed to Ioctl is rejected as ErrInappropriateOperation.
const OpSeekTo = 1

// Handle is a per-consumer cursor plus write-accumulation state. Construct
// with NewHandle: a zero Handle has no accumulator, and Write on it panics.
type Handle struct {
	fPos int64
	acc  *accumulator.Accumulator
}

// NewHandle returns a Handle positioned at the start of the log.
func NewHandle() *Handle {
	return &Handle{acc: accumulator.New()}
}

// Position returns the handle's current absolute byte offset.
func (h *Handle) Position() int64 {
	return h.fPos
}

// Interface exposes ringlog.Log through the read/write/seek/ioctl surface.
// All operations acquire the interface's lock for their entire duration —
// the "RingLog mutex" of spec.md §5 in its char-device configuration — and
// the acquisition is interruptible via ctx: a canceled ctx aborts a waiting
// operation with ErrInterrupted instead of blocking forever.
type Interface struct {
	log  *ringlog.Log
	pos  *positioner.Positioner
	lock *cancellableMutex
}

// New returns an Interface backed by log.
func New(log *ringlog.Log) *Interface {
	return &Interface{
		log:  log,
		pos:  positioner.New(log),
		lock: newCancellableMutex(),
	}
}

// Read copies bytes starting at h's current position into dst, spanning
// command boundaries transparently, and advances h's position by the
// number of bytes copied. A read that starts at or beyond the log's total
// byte count returns (0, nil) — EndOfData is not an error, per spec.md §7.
func (ci *Interface) Read(ctx context.Context, h *Handle, dst []byte) (int, error) {
	if err := ci.lock.Lock(ctx); err != nil {
		return 0, ErrInterrupted
	}
	defer ci.lock.Unlock()

	n := 0
	pos := h.fPos
	for n < len(dst) {
		cmd, intra, ok := ci.log.ResolveOffset(int(pos))
		if !ok {
			break
		}
		copied := copy(dst[n:], cmd[intra:])
		n += copied
		pos += int64(copied)
	}
	h.fPos = pos
	return n, nil
}

// Write feeds src into h's accumulator; any command it completes is
// appended to the log. It returns len(src) on success, matching the
// write() semantics callers expect (partial-command bytes are still
// "written" even though not yet committed).
func (ci *Interface) Write(ctx context.Context, h *Handle, src []byte) (int, error) {
	if err := ci.lock.Lock(ctx); err != nil {
		return 0, ErrInterrupted
	}
	defer ci.lock.Unlock()

	if cmd, ok := h.acc.Feed(src); ok {
		owned := make([]byte, len(cmd))
		copy(owned, cmd)
		ci.log.Append(owned)
	}
	return len(src), nil
}

// Seek repositions h according to whence, rejecting any result that would
// be negative. SEEK_END additionally rejects an off that would underflow
// past the start of the log — the corrected behavior from spec.md §4.7 and
// §9's Open Question.
func (ci *Interface) Seek(ctx context.Context, h *Handle, off int64, whence int) (int64, error) {
	if err := ci.lock.Lock(ctx); err != nil {
		return 0, ErrInterrupted
	}
	defer ci.lock.Unlock()

	var newPos int64
	switch whence {
	case SeekSet:
		newPos = off
	case SeekCur:
		newPos = h.fPos + off
	case SeekEnd:
		total := int64(ci.log.TotalBytes())
		if off > total {
			return 0, ErrInvalidArgument
		}
		newPos = total - off
	default:
		return 0, ErrInvalidArgument
	}

	if newPos < 0 {
		return 0, ErrInvalidArgument
	}

	h.fPos = newPos
	return newPos, nil
}

// Ioctl dispatches an out-of-band request. Only OpSeekTo is recognized;
// every other opcode returns ErrInappropriateOperation. On success it sets
// h's position to the resolved absolute byte offset.
func (ci *Interface) Ioctl(ctx context.Context, h *Handle, opcode uint32, req PositionRequest) error {
	if opcode != OpSeekTo {
		return ErrInappropriateOperation
	}

	if err := ci.lock.Lock(ctx); err != nil {
		return ErrInterrupted
	}
	defer ci.lock.Unlock()

	pos, err := ci.pos.Resolve(req.WriteCmd, req.WriteCmdOffset)
	if err != nil {
		return ErrInvalidArgument
	}

	h.fPos = pos
	return nil
}

// cancellableMutex is a binary semaphore whose Lock can be aborted by a
// context, giving the char-device surface the "interruptible" acquisition
// spec.md §5 requires. The equivalent network-configuration lock (guarding
// logstore.Store) is a plain sync.Mutex, since spec.md only requires
// interruptibility on this surface.
type cancellableMutex struct {
	ch chan struct{}
}

func newCancellableMutex() *cancellableMutex {
	m := &cancellableMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

func (m *cancellableMutex) Lock(ctx context.Context) error {
	select {
	case <-m.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *cancellableMutex) Unlock() {
	m.ch <- struct{}{}
}
