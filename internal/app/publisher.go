// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// Event types fanned out by the daemon.
const (
	EventStep     = "step"     // Data: int
	EventSettings = "settings" // Data: knob.Settings
	EventStatus   = "status"   // Data: string
	EventCycle    = "cycle"    // Data: knob.CycleResult
)

// Event is one daemon output.
type Event struct {
	Type string
	Data any
}

// Publisher delivers daemon events to one sink.
type Publisher interface {
	Publish(ev Event) error
}

// MultiPublisher fans an event out to every publisher and joins the errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriterPublisher prints the line protocol: STEP:<n> lines, settings dumps
// and status lines. Cycle telemetry is not printed.
type WriterPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPublisher(w io.Writer) *WriterPublisher {
	return &WriterPublisher{w: w}
}

func (p *WriterPublisher) Publish(ev Event) error {
	var out string
	switch ev.Type {
	case EventStep:
		step, ok := ev.Data.(int)
		if !ok {
			return fmt.Errorf("step event carries %T", ev.Data)
		}
		out = knob.FormatStep(step) + "\n"
	case EventSettings:
		s, ok := ev.Data.(knob.Settings)
		if !ok {
			return fmt.Errorf("settings event carries %T", ev.Data)
		}
		out = knob.FormatSettings(s)
	case EventStatus:
		out = fmt.Sprintf("%v\n", ev.Data)
	default:
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, out)
	return err
}
