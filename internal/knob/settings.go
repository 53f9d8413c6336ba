// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CustomName replaces the preset name once any field is edited directly.
const CustomName = "Custom"

// minSpan is the smallest bounded span (rad) treated as usable travel.
// Anything at or below it is a degenerate span: clamp only, step 0.
const minSpan = 0.001

// Settings is one knob feel: travel limits, detents, stiffness and step
// granularity.
type Settings struct {
	Name               string  `json:"name" yaml:"name"`
	Bounded            bool    `json:"bounded" yaml:"bounded"`
	MinAngle           float64 `json:"min_angle_rad" yaml:"min_angle"` // only used when Bounded
	MaxAngle           float64 `json:"max_angle_rad" yaml:"max_angle"` // only used when Bounded
	NumDetents         int     `json:"num_detents" yaml:"num_detents"`
	DetentStrength     float64 `json:"detent_strength" yaml:"detent_strength"` // P gain
	StepsPerRevolution int     `json:"steps_per_revolution" yaml:"steps_per_revolution"`
}

// Field names a single editable Settings attribute.
type Field string

const (
	FieldNumDetents         Field = "num_detents"
	FieldDetentStrength     Field = "detent_strength"
	FieldStepsPerRevolution Field = "steps_per_revolution"
	FieldBounded            Field = "is_bounded"
	FieldMinAngle           Field = "min_angle"
	FieldMaxAngle           Field = "max_angle"
)

// Fields lists every editable field in settings-dump order.
var Fields = []Field{
	FieldBounded,
	FieldMinAngle,
	FieldMaxAngle,
	FieldNumDetents,
	FieldDetentStrength,
	FieldStepsPerRevolution,
}

// Span returns MaxAngle - MinAngle. It may be negative; nothing enforces
// MinAngle <= MaxAngle.
func (s Settings) Span() float64 {
	return s.MaxAngle - s.MinAngle
}

// ValidSpan reports whether the bounded travel is wide enough to divide
// into detents and steps.
func (s Settings) ValidSpan() bool {
	return s.Span() > minSpan
}

// Validate checks the per-field constraints. Cross-field consistency
// (min <= max, detents vs steps) is not checked.
func (s Settings) Validate() error {
	if s.NumDetents < 0 {
		return fmt.Errorf("%s must be >= 0, got %d: %w", FieldNumDetents, s.NumDetents, ErrInvalidValue)
	}
	if s.StepsPerRevolution < 0 {
		return fmt.Errorf("%s must be >= 0, got %d: %w", FieldStepsPerRevolution, s.StepsPerRevolution, ErrInvalidValue)
	}
	if !finite(s.DetentStrength) || s.DetentStrength < 0 {
		return fmt.Errorf("%s must be a finite number >= 0, got %v: %w", FieldDetentStrength, s.DetentStrength, ErrInvalidValue)
	}
	if !finite(s.MinAngle) {
		return fmt.Errorf("%s must be finite, got %v: %w", FieldMinAngle, s.MinAngle, ErrInvalidValue)
	}
	if !finite(s.MaxAngle) {
		return fmt.Errorf("%s must be finite, got %v: %w", FieldMaxAngle, s.MaxAngle, ErrInvalidValue)
	}
	return nil
}

// WithField parses raw for the named field and returns a copy of s with
// only that field changed and the name set to CustomName.
func (s Settings) WithField(field Field, raw string) (Settings, error) {
	raw = strings.TrimSpace(raw)

	switch field {
	case FieldNumDetents:
		v, err := parseCount(field, raw)
		if err != nil {
			return s, err
		}
		s.NumDetents = v
	case FieldStepsPerRevolution:
		v, err := parseCount(field, raw)
		if err != nil {
			return s, err
		}
		s.StepsPerRevolution = v
	case FieldDetentStrength:
		v, err := parseFloat(field, raw)
		if err != nil {
			return s, err
		}
		if v < 0 {
			return s, fmt.Errorf("%s must be >= 0, got %v: %w", field, v, ErrInvalidValue)
		}
		s.DetentStrength = v
	case FieldMinAngle:
		v, err := parseFloat(field, raw)
		if err != nil {
			return s, err
		}
		s.MinAngle = v
	case FieldMaxAngle:
		v, err := parseFloat(field, raw)
		if err != nil {
			return s, err
		}
		s.MaxAngle = v
	case FieldBounded:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return s, fmt.Errorf("%s: %q is not a boolean: %w", field, raw, ErrInvalidValue)
		}
		s.Bounded = v
	default:
		return s, fmt.Errorf("unknown field %q: %w", field, ErrInvalidValue)
	}

	s.Name = CustomName
	return s, nil
}

func parseCount(field Field, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer: %w", field, raw, ErrInvalidValue)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must be >= 0, got %d: %w", field, v, ErrInvalidValue)
	}
	return v, nil
}

func parseFloat(field Field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return 0, fmt.Errorf("%s: %q is not a finite number: %w", field, raw, ErrInvalidValue)
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
