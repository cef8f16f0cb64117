package ringlog

import (
	"sync"
	"testing"
)

func TestAppendAndWrapAround(t *testing.T) {
	l := New(3)
	cmds := []string{"A\n", "B\n", "C\n", "D\n"}
	for _, c := range cmds {
		l.Append([]byte(c))
	}

	var got []string
	l.Iterate(func(cmd []byte) bool {
		got = append(got, string(cmd))
		return true
	})

	want := []string{"B\n", "C\n", "D\n"}
	if len(got) != len(want) {
		t.Fatalf("count = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %q, want %q", i, got[i], want[i])
		}
	}

	if tb := l.TotalBytes(); tb != 6 {
		t.Errorf("TotalBytes() = %d, want 6", tb)
	}
}

func TestResolveOffset(t *testing.T) {
	l := New(3)
	for _, c := range []string{"A\n", "B\n", "C\n", "D\n"} {
		l.Append([]byte(c))
	}

	cmd, intra, ok := l.ResolveOffset(0)
	if !ok || string(cmd) != "B\n" || intra != 0 {
		t.Fatalf("ResolveOffset(0) = (%q, %d, %v), want (B\\n, 0, true)", cmd, intra, ok)
	}

	cmd, intra, ok = l.ResolveOffset(5)
	if !ok || string(cmd) != "D\n" || intra != 1 {
		t.Fatalf("ResolveOffset(5) = (%q, %d, %v), want (D\\n, 1, true)", cmd, intra, ok)
	}

	if _, _, ok := l.ResolveOffset(6); ok {
		t.Fatalf("ResolveOffset(6) should be out of range (total_bytes == 6)")
	}
}

func TestResolveOffsetEmptyLog(t *testing.T) {
	l := New(3)
	if _, _, ok := l.ResolveOffset(0); ok {
		t.Fatalf("ResolveOffset(0) on empty log should not resolve")
	}
}

func TestPositionOf(t *testing.T) {
	l := New(10)
	for _, c := range []string{"A\n", "B\n", "C\n"} {
		l.Append([]byte(c))
	}

	pos, err := l.PositionOf(1, 0)
	if err != nil {
		t.Fatalf("PositionOf(1, 0) error: %v", err)
	}
	if pos != 2 {
		t.Errorf("PositionOf(1, 0) = %d, want 2", pos)
	}

	if _, err := l.PositionOf(3, 0); err != ErrOutOfRange {
		t.Errorf("PositionOf(3, 0) = %v, want ErrOutOfRange", err)
	}
}

func TestPositionOfOffsetOutOfRange(t *testing.T) {
	l := New(10)
	l.Append([]byte("AB\n"))

	if _, err := l.PositionOf(0, 3); err != ErrOutOfRange {
		t.Errorf("PositionOf(0, 3) on a 3-byte command = %v, want ErrOutOfRange", err)
	}
}

func TestTotalBytesInvariant(t *testing.T) {
	l := New(4)
	for i := 0; i < 20; i++ {
		l.Append([]byte("xy\n"))

		sum := 0
		l.Iterate(func(cmd []byte) bool {
			sum += len(cmd)
			return true
		})
		if sum != l.TotalBytes() {
			t.Fatalf("after %d appends: iterate sum %d != TotalBytes() %d", i, sum, l.TotalBytes())
		}
	}
}

func TestConcurrentWriters(t *testing.T) {
	const writers = 8
	const perWriter = 50
	l := New(1000)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.Append([]byte("x\n"))
			}
		}()
	}
	wg.Wait()

	if got, want := l.Count(), writers*perWriter; got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
	if got, want := l.TotalBytes(), writers*perWriter*2; got != want {
		t.Errorf("TotalBytes() = %d, want %d", got, want)
	}
}

func TestConcurrentWritersBeyondCapacity(t *testing.T) {
	const writers = 4
	const perWriter = 100
	const capacity = 10
	l := New(capacity)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.Append([]byte("z\n"))
			}
		}()
	}
	wg.Wait()

	if got, want := l.Count(), capacity; got != want {
		t.Errorf("Count() = %d, want min(N, k*m) = %d", got, want)
	}
}
