package ticker

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"
)

type fakeAppender struct {
	mu   sync.Mutex
	cmds [][]byte
}

func (f *fakeAppender) Append(cmd []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := make([]byte, len(cmd))
	copy(owned, cmd)
	f.cmds = append(f.cmds, owned)
	return nil
}

func (f *fakeAppender) snapshot() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.cmds))
	copy(out, f.cmds)
	return out
}

func TestTickerAppendsTimestampCommands(t *testing.T) {
	app := &fakeAppender{}
	tk := New(app, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	tk.Run(ctx)

	cmds := app.snapshot()
	if len(cmds) < 3 {
		t.Fatalf("expected at least 3 ticks in 55ms at a 10ms period, got %d", len(cmds))
	}

	pattern := regexp.MustCompile(`^timestamp:.*\n$`)
	for _, c := range cmds {
		if !pattern.Match(c) {
			t.Errorf("tick command %q does not match ^timestamp:.*\\n$", c)
		}
	}
}

func TestAppenderFuncAdapts(t *testing.T) {
	var got []byte
	fn := AppenderFunc(func(cmd []byte) error {
		got = cmd
		return nil
	})

	var a Appender = fn
	if err := a.Append([]byte("x\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if string(got) != "x\n" {
		t.Errorf("got = %q, want %q", got, "x\n")
	}
}
