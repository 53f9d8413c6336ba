// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/motor"
)

// maxLinkErrors is how many NextAngle failures in a row end the loop.
const maxLinkErrors = 10

// Waits between consecutive link failures: doubling from the base, capped.
const (
	defaultLinkBackoff = 100 * time.Millisecond
	maxLinkBackoff     = 2 * time.Second
)

// Daemon runs the control loop for one knob and applies operator ops.
type Daemon struct {
	ctrl   *knob.Controller
	link   motor.Link
	pub    Publisher
	logger *slog.Logger

	cycleEvery  time.Duration
	lastCycle   time.Time
	now         func() time.Time
	linkBackoff time.Duration
}

// DaemonOptions are the optional daemon settings.
type DaemonOptions struct {
	// CycleEvery throttles cycle telemetry. Zero disables it.
	CycleEvery time.Duration
	// LinkBackoff is the first wait after a link failure. Zero selects
	// 100ms.
	LinkBackoff time.Duration
}

func NewDaemon(ctrl *knob.Controller, link motor.Link, pub Publisher, logger *slog.Logger, opts DaemonOptions) *Daemon {
	if pub == nil {
		pub = MultiPublisher{}
	}
	if opts.LinkBackoff <= 0 {
		opts.LinkBackoff = defaultLinkBackoff
	}
	return &Daemon{
		ctrl:        ctrl,
		link:        link,
		pub:         pub,
		logger:      logger.With("component", "daemon"),
		cycleEvery:  opts.CycleEvery,
		now:         time.Now,
		linkBackoff: opts.LinkBackoff,
	}
}

// Controller returns the knob controller driven by the daemon.
func (d *Daemon) Controller() *knob.Controller { return d.ctrl }

// Run publishes the active settings, then runs control cycles until ctx is
// done or the link keeps failing.
func (d *Daemon) Run(ctx context.Context) error {
	s := d.ctrl.Settings()
	d.logger.Info("control loop starting", "preset", d.ctrl.PresetIndex(), "name", s.Name)
	d.publish(Event{Type: EventSettings, Data: s})

	failures := 0
	for {
		angle, err := d.link.NextAngle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("control loop stopping")
				return nil
			}
			failures++
			d.logger.Warn("link read failed", "error", err, "consecutive", failures)
			if failures >= maxLinkErrors {
				return fmt.Errorf("link failed %d times in a row: %w", failures, err)
			}
			select {
			case <-ctx.Done():
				d.logger.Info("control loop stopping")
				return nil
			case <-time.After(d.backoff(failures)):
			}
			continue
		}
		failures = 0
		d.Cycle(angle)
	}
}

// backoff returns the wait after the given number of consecutive failures.
func (d *Daemon) backoff(failures int) time.Duration {
	wait := d.linkBackoff
	for i := 1; i < failures && wait < maxLinkBackoff; i++ {
		wait *= 2
	}
	return min(wait, maxLinkBackoff)
}

// Cycle runs one control cycle for angle: transform, command, report.
func (d *Daemon) Cycle(angle float64) knob.CycleResult {
	res := d.ctrl.Tick(angle)

	if err := d.link.Command(res.Target, res.Gain); err != nil {
		d.logger.Warn("link command failed", "error", err)
	}

	if res.StepChanged {
		d.logger.Debug("step", "step", res.Step, "angle", physic.Angle(angle*float64(physic.Radian)))
		d.publish(Event{Type: EventStep, Data: res.Step})
	}

	if d.cycleEvery > 0 {
		if now := d.now(); now.Sub(d.lastCycle) >= d.cycleEvery {
			d.lastCycle = now
			d.publish(Event{Type: EventCycle, Data: res})
		}
	}
	return res
}

// Apply applies op, publishes the status line and, when the configuration
// changed or a dump was requested, the settings.
func (d *Daemon) Apply(op knob.Op) (knob.Reply, error) {
	r, err := d.ctrl.Apply(op)
	switch {
	case err == nil:
		d.logger.Info("op applied", "op", fmt.Sprintf("%T", op), "status", r.Status)
	case errors.Is(err, knob.ErrInvalidOperation):
		d.logger.Info("op skipped", "op", fmt.Sprintf("%T", op), "reason", err)
	default:
		d.logger.Warn("op rejected", "op", fmt.Sprintf("%T", op), "error", err)
	}

	d.publish(Event{Type: EventStatus, Data: r.Status})
	if _, dump := op.(knob.ReportSettings); r.Changed || dump {
		d.publish(Event{Type: EventSettings, Data: r.Settings})
	}
	return r, err
}

// HandleCommand decodes a JSON op envelope and applies it. Decode errors
// are reported on the status channel like any rejected op.
func (d *Daemon) HandleCommand(payload []byte) (knob.Reply, error) {
	op, err := knob.UnmarshalOp(payload)
	if err != nil {
		err = fmt.Errorf("%w: %v", knob.ErrInvalidValue, err)
		r := knob.Reply{
			Status:   "Error: " + err.Error(),
			Settings: d.ctrl.Settings(),
		}
		d.logger.Warn("bad command", "error", err)
		d.publish(Event{Type: EventStatus, Data: r.Status})
		return r, err
	}
	return d.Apply(op)
}

func (d *Daemon) publish(ev Event) {
	if err := d.pub.Publish(ev); err != nil {
		d.logger.Warn("publish failed", "type", ev.Type, "error", err)
	}
}
