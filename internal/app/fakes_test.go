// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/logging"
)

type command struct {
	target, gain float64
}

// fakeLink hands out queued angles (or errors) and records commands.
type fakeLink struct {
	angles chan float64
	errs   chan error

	mu       sync.Mutex
	commands []command
	closed   bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		angles: make(chan float64, 64),
		errs:   make(chan error, 64),
	}
}

func (l *fakeLink) NextAngle(ctx context.Context) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case err := <-l.errs:
		return 0, err
	case a := <-l.angles:
		return a, nil
	}
}

func (l *fakeLink) Command(target, gain float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = append(l.commands, command{target, gain})
	return nil
}

func (l *fakeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *fakeLink) Commands() []command {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]command(nil), l.commands...)
}

// recorder is a Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) Steps() []int {
	var steps []int
	for _, ev := range r.Events() {
		if ev.Type == EventStep {
			steps = append(steps, ev.Data.(int))
		}
	}
	return steps
}

func (r *recorder) OfType(typ string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestDaemon(t *testing.T, preset int) (*Daemon, *fakeLink, *recorder) {
	t.Helper()
	ctrl, err := knob.NewController(knob.DefaultPresets(), preset)
	if err != nil {
		t.Fatal(err)
	}
	link := newFakeLink()
	rec := &recorder{}
	return NewDaemon(ctrl, link, rec, logging.Discard(), DaemonOptions{LinkBackoff: time.Millisecond}), link, rec
}
