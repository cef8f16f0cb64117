package positioner

import (
	"testing"

	"github.com/commandlogd/commandlogd/internal/ringlog"
)

func TestResolve(t *testing.T) {
	log := ringlog.New(10)
	for _, c := range []string{"A\n", "B\n", "C\n"} {
		log.Append([]byte(c))
	}

	p := New(log)
	pos, err := p.Resolve(1, 0)
	if err != nil {
		t.Fatalf("Resolve(1, 0) error: %v", err)
	}
	if pos != 2 {
		t.Errorf("Resolve(1, 0) = %d, want 2", pos)
	}
}

func TestResolveInvalidCommandIndex(t *testing.T) {
	log := ringlog.New(10)
	for _, c := range []string{"A\n", "B\n", "C\n"} {
		log.Append([]byte(c))
	}

	p := New(log)
	if _, err := p.Resolve(3, 0); err != ErrInvalidArgument {
		t.Errorf("Resolve(3, 0) with only 3 commands = %v, want ErrInvalidArgument", err)
	}
}

func TestResolveInvalidIntraOffset(t *testing.T) {
	log := ringlog.New(10)
	log.Append([]byte("AB\n"))

	p := New(log)
	if _, err := p.Resolve(0, 3); err != ErrInvalidArgument {
		t.Errorf("Resolve(0, 3) on a 3-byte command = %v, want ErrInvalidArgument", err)
	}
}
