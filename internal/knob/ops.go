// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"errors"
	"fmt"
)

// Op is one operator request. The set is closed: SwitchPreset, SetField,
// SetBounded, Calibrate and ReportSettings.
//
// Ops carry already-shaped requests; their values are validated when
// applied.
type Op interface {
	apply(c *Controller) (Reply, error)
}

// SwitchPreset loads a preset by index.
type SwitchPreset struct {
	Index int `json:"index"`
}

// SetField sets one named field from its text form.
type SetField struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// SetBounded toggles bounded travel.
type SetBounded struct {
	Bounded bool `json:"bounded"`
}

// Calibrate makes the current shaft angle the unbounded zero.
type Calibrate struct{}

// ReportSettings requests a settings dump without changing anything.
type ReportSettings struct{}

// Reply is the outcome of an applied op.
type Reply struct {
	Status   string   `json:"status"`
	Changed  bool     `json:"changed"`
	Settings Settings `json:"settings"`
	Dump     string   `json:"dump,omitempty"`
}

// Apply executes op against the controller. A non-nil error means the
// configuration was left unchanged; the Reply still carries the current
// settings and a status line suitable for the operator.
func (c *Controller) Apply(op Op) (Reply, error) {
	if op == nil {
		return c.reply("no operation", false), fmt.Errorf("nil op: %w", ErrInvalidOperation)
	}
	r, err := op.apply(c)
	if err != nil {
		r = c.reply(statusForError(err), false)
	}
	return r, err
}

func (op SwitchPreset) apply(c *Controller) (Reply, error) {
	if err := c.LoadPreset(op.Index); err != nil {
		return Reply{}, err
	}
	s := c.Settings()
	return c.reply(fmt.Sprintf("Loaded preset %d: %s", op.Index, s.Name), true), nil
}

func (op SetField) apply(c *Controller) (Reply, error) {
	if op.Field == FieldBounded {
		b, err := Settings{}.WithField(FieldBounded, op.Value)
		if err != nil {
			return Reply{}, err
		}
		return SetBounded{Bounded: b.Bounded}.apply(c)
	}
	if err := c.SetField(op.Field, op.Value); err != nil {
		return Reply{}, err
	}
	return c.reply(fmt.Sprintf("Set %s = %s", op.Field, op.Value), true), nil
}

func (op SetBounded) apply(c *Controller) (Reply, error) {
	status := fmt.Sprintf("Set %s = %t", FieldBounded, op.Bounded)
	if c.SetBounded(op.Bounded) {
		status += "; calibrate to set the new zero"
	}
	return c.reply(status, true), nil
}

func (Calibrate) apply(c *Controller) (Reply, error) {
	angle, err := c.CalibrateHere()
	if err != nil {
		return Reply{}, err
	}
	return c.reply(fmt.Sprintf("Calibrated: zero at %.3f rad", angle), true), nil
}

func (ReportSettings) apply(c *Controller) (Reply, error) {
	return c.reply("Settings", false), nil
}

func (c *Controller) reply(status string, changed bool) Reply {
	s := c.Settings()
	return Reply{
		Status:   status,
		Changed:  changed,
		Settings: s,
		Dump:     FormatSettings(s),
	}
}

func statusForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidOperation):
		return "Info: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
