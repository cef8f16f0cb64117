// Package ticker implements the periodic timestamp appender. It shares the
// same LogStore mutex as the ConnectionServer — it appends through the
// identical append path, just without going through an Accumulator — so
// its commands interleave with client commands at command granularity
// only, never torn.
package ticker

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Appender is the subset of logstore.Store the Ticker needs. Declared as an
// interface so tests can substitute a fake without touching the real file.
type Appender interface {
	Append(cmd []byte) error
}

// AppenderFunc adapts a plain function to Appender, the way http.HandlerFunc
// adapts a function to http.Handler. Used to route Ticker appends through a
// server's own commit lock without exposing the whole Server type here.
type AppenderFunc func(cmd []byte) error

// Append calls f.
func (f AppenderFunc) Append(cmd []byte) error { return f(cmd) }

// Recorder optionally records each tick for telemetry. Nil is fine — the
// Ticker works without one.
type Recorder interface {
	TickRecorded(at time.Time, bytes int) error
}

// Ticker appends a timestamp command to an Appender on a fixed period.
type Ticker struct {
	store    Appender
	recorder Recorder
	period   time.Duration
}

// New returns a Ticker that appends to store every period.
func New(store Appender, period time.Duration, recorder Recorder) *Ticker {
	return &Ticker{store: store, period: period, recorder: recorder}
}

// Run blocks, appending one timestamp command every period, until ctx is
// canceled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.tick(now)
		}
	}
}

func (t *Ticker) tick(now time.Time) {
	cmd := []byte(fmt.Sprintf("timestamp:%s\n", now.Format(time.ANSIC)))

	if err := t.store.Append(cmd); err != nil {
		log.Printf("[ticker] append error: %v", err)
		return
	}

	if t.recorder != nil {
		if err := t.recorder.TickRecorded(now, len(cmd)); err != nil {
			log.Printf("[ticker] telemetry error: %v", err)
		}
	}
}
