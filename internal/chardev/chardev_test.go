package chardev

import (
	"context"
	"testing"
	"time"

	"github.com/commandlogd/commandlogd/internal/ringlog"
)

func writeAll(t *testing.T, ci *Interface, h *Handle, s string) {
	t.Helper()
	if _, err := ci.Write(context.Background(), h, []byte(s)); err != nil {
		t.Fatalf("Write(%q): %v", s, err)
	}
}

func TestReadSpansCommandBoundaries(t *testing.T) {
	ci := New(ringlog.New(10))
	w := NewHandle()
	writeAll(t, ci, w, "hello\n")
	writeAll(t, ci, w, "world\n")

	r := NewHandle()
	buf := make([]byte, 100)
	n, err := ci.Read(context.Background(), r, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "hello\nworld\n" {
		t.Errorf("Read() = %q, want %q", buf[:n], "hello\nworld\n")
	}
	if r.Position() != 12 {
		t.Errorf("Position() = %d, want 12", r.Position())
	}
}

func TestReadPastEndReturnsZeroNoError(t *testing.T) {
	ci := New(ringlog.New(10))
	w := NewHandle()
	writeAll(t, ci, w, "hi\n")

	r := NewHandle()
	if _, err := ci.Seek(context.Background(), r, 3, SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	buf := make([]byte, 10)
	n, err := ci.Read(context.Background(), r, buf)
	if err != nil {
		t.Fatalf("Read past end should not error, got %v", err)
	}
	if n != 0 {
		t.Errorf("Read past end should return 0 bytes, got %d", n)
	}
}

func TestSeekEndRejectsUnderflow(t *testing.T) {
	ci := New(ringlog.New(10))
	w := NewHandle()
	writeAll(t, ci, w, "hi\n")

	h := NewHandle()
	if _, err := ci.Seek(context.Background(), h, 100, SeekEnd); err != ErrInvalidArgument {
		t.Errorf("SEEK_END past the start = %v, want ErrInvalidArgument", err)
	}
}

func TestSeekNegativeRejected(t *testing.T) {
	ci := New(ringlog.New(10))
	h := NewHandle()
	if _, err := ci.Seek(context.Background(), h, -1, SeekSet); err != ErrInvalidArgument {
		t.Errorf("SEEK_SET with a negative offset = %v, want ErrInvalidArgument", err)
	}
}

func TestIoctlUnrecognizedOpcode(t *testing.T) {
	ci := New(ringlog.New(10))
	h := NewHandle()
	err := ci.Ioctl(context.Background(), h, 99, PositionRequest{})
	if err != ErrInappropriateOperation {
		t.Errorf("Ioctl with an unrecognized opcode = %v, want ErrInappropriateOperation", err)
	}
}

func TestIoctlSeekToPositionsHandle(t *testing.T) {
	ci := New(ringlog.New(10))
	w := NewHandle()
	writeAll(t, ci, w, "AAA\n")
	writeAll(t, ci, w, "BBB\n")

	h := NewHandle()
	if err := ci.Ioctl(context.Background(), h, OpSeekTo, PositionRequest{WriteCmd: 1, WriteCmdOffset: 0}); err != nil {
		t.Fatalf("Ioctl: %v", err)
	}
	if h.Position() != 4 {
		t.Errorf("Position() after seeking to command 1 = %d, want 4", h.Position())
	}
}

func TestIoctlInvalidArgument(t *testing.T) {
	ci := New(ringlog.New(10))
	w := NewHandle()
	writeAll(t, ci, w, "AAA\n")

	h := NewHandle()
	err := ci.Ioctl(context.Background(), h, OpSeekTo, PositionRequest{WriteCmd: 5, WriteCmdOffset: 0})
	if err != ErrInvalidArgument {
		t.Errorf("Ioctl with an out-of-range command index = %v, want ErrInvalidArgument", err)
	}
}

func TestLockIsInterruptible(t *testing.T) {
	ci := New(ringlog.New(10))
	h := NewHandle()

	if err := ci.lock.Lock(context.Background()); err != nil {
		t.Fatalf("initial lock should succeed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ci.Read(ctx, h, make([]byte, 1))
	if err != ErrInterrupted {
		t.Errorf("Read while lock held and ctx expiring = %v, want ErrInterrupted", err)
	}

	ci.lock.Unlock()
}
