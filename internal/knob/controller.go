// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"fmt"
	"math"
	"sync"
)

// noStep is the last-reported-step sentinel. No legal step can equal it,
// so the next tick after a reset always reports a change.
const noStep = math.MinInt

// CycleResult is the output of one control cycle.
type CycleResult struct {
	Angle       float64 `json:"angle"`
	Target      float64 `json:"target"`
	Gain        float64 `json:"gain"`
	Step        int     `json:"step"`
	StepChanged bool    `json:"step_changed"`
	Detent      int     `json:"detent"`
	HasDetent   bool    `json:"has_detent"`
}

// State is a point-in-time copy of the controller state.
type State struct {
	Settings    Settings `json:"settings"`
	PresetIndex int      `json:"preset_index"`
	Offset      float64  `json:"calibration_offset"`
	LastAngle   float64  `json:"last_angle"`
	LastStep    int      `json:"last_step"`
	HaveStep    bool     `json:"have_step"`
}

// Controller owns the active configuration, calibration offset and the
// last reported step for a single knob.
//
// Safe for concurrent use: the mutex is held for exactly one tick or one
// mutation, so a tick never sees half-applied settings.
type Controller struct {
	mu sync.Mutex

	presets     []Settings
	active      Settings
	presetIndex int
	offset      float64
	lastStep    int
	lastAngle   float64
	haveAngle   bool
}

// NewController copies the preset table and loads preset initial.
func NewController(presets []Settings, initial int) (*Controller, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("empty preset table: %w", ErrOutOfRange)
	}
	table := make([]Settings, len(presets))
	copy(table, presets)

	c := &Controller{presets: table, lastStep: noStep}
	if err := c.LoadPreset(initial); err != nil {
		return nil, err
	}
	return c, nil
}

// Tick runs one control cycle for the given shaft angle.
func (c *Controller) Tick(angle float64) CycleResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastAngle = angle
	c.haveAngle = true

	target, gain := Transform(angle, c.active, c.offset)
	step := Quantize(angle, c.active, c.offset)
	detent, hasDetent := DetentIndex(angle, c.active, c.offset)

	changed := step != c.lastStep
	if changed {
		c.lastStep = step
	}

	return CycleResult{
		Angle:       angle,
		Target:      target,
		Gain:        gain,
		Step:        step,
		StepChanged: changed,
		Detent:      detent,
		HasDetent:   hasDetent,
	}
}

// LoadPreset replaces the active settings with a copy of preset i.
func (c *Controller) LoadPreset(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.presets) {
		return fmt.Errorf("preset %d not in [0, %d]: %w", i, len(c.presets)-1, ErrOutOfRange)
	}
	c.active = c.presets[i]
	c.presetIndex = i
	c.lastStep = noStep
	return nil
}

// SetField parses raw and sets a single field. The active settings are
// renamed to CustomName. On error nothing changes.
//
// Setting FieldBounded has the same effect as SetBounded without the
// recalibration hint.
func (c *Controller) SetField(field Field, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.active.WithField(field, raw)
	if err != nil {
		return err
	}
	c.active = next
	c.lastStep = noStep
	return nil
}

// SetBounded sets the bounded flag. recalibrate is true when the knob just
// became unbounded; calibrating is advised but not enforced.
func (c *Controller) SetBounded(bounded bool) (recalibrate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recalibrate = c.active.Bounded && !bounded
	c.active.Bounded = bounded
	c.active.Name = CustomName
	c.lastStep = noStep
	return recalibrate
}

// Calibrate makes angle the logical zero for unbounded detents and steps.
// While bounded it does nothing and returns ErrInvalidOperation.
func (c *Controller) Calibrate(angle float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calibrateLocked(angle)
}

// CalibrateHere makes the angle of the most recent Tick the logical zero
// and returns it. Before the first Tick there is no angle to use and it
// returns ErrInvalidOperation.
func (c *Controller) CalibrateHere() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active.Bounded && !c.haveAngle {
		return 0, fmt.Errorf("no shaft angle seen yet: %w", ErrInvalidOperation)
	}
	if err := c.calibrateLocked(c.lastAngle); err != nil {
		return 0, err
	}
	return c.lastAngle, nil
}

func (c *Controller) calibrateLocked(angle float64) error {
	if c.active.Bounded {
		return fmt.Errorf("calibration only applies to unbounded mode: %w", ErrInvalidOperation)
	}
	c.offset = angle
	c.lastStep = noStep
	return nil
}

// Settings returns a copy of the active settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// PresetIndex returns the index of the preset last loaded. After a field
// edit it still points at that preset even though the settings differ.
func (c *Controller) PresetIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presetIndex
}

// Presets returns a copy of the preset table.
func (c *Controller) Presets() []Settings {
	out := make([]Settings, len(c.presets))
	copy(out, c.presets)
	return out
}

// Offset returns the calibration offset.
func (c *Controller) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Snapshot returns a consistent copy of the whole controller state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Settings:    c.active,
		PresetIndex: c.presetIndex,
		Offset:      c.offset,
		LastAngle:   c.lastAngle,
		LastStep:    c.lastStep,
		HaveStep:    c.lastStep != noStep,
	}
}
