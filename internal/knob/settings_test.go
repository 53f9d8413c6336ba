// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	if len(presets) != 6 {
		t.Fatalf("got %d presets, want 6", len(presets))
	}

	names := []string{
		"Unbounded Smooth",
		"Unbounded 12 Detents",
		"Bounded 0-180 8 Detents",
		"Volume Knob",
		"Fine Unbounded",
		"Switch",
	}
	for i, p := range presets {
		if p.Name != names[i] {
			t.Errorf("preset %d name=%q, want %q", i, p.Name, names[i])
		}
		if err := p.Validate(); err != nil {
			t.Errorf("preset %d invalid: %v", i, err)
		}
	}

	v := presets[PresetVolume]
	if !v.Bounded || v.MinAngle != 0 || v.MaxAngle != 2*math.Pi || v.StepsPerRevolution != 100 {
		t.Errorf("volume preset=%+v", v)
	}

	presets[0].Name = "changed"
	if DefaultPresets()[0].Name != "Unbounded Smooth" {
		t.Errorf("DefaultPresets shares state between calls")
	}
}

func TestSettings_WithField(t *testing.T) {
	base := DefaultPresets()[PresetBounded8]

	cases := []struct {
		field Field
		raw   string
		check func(Settings) bool
	}{
		{FieldNumDetents, "0", func(s Settings) bool { return s.NumDetents == 0 }},
		{FieldNumDetents, " 16 ", func(s Settings) bool { return s.NumDetents == 16 }},
		{FieldStepsPerRevolution, "0", func(s Settings) bool { return s.StepsPerRevolution == 0 }},
		{FieldDetentStrength, "0", func(s Settings) bool { return s.DetentStrength == 0 }},
		{FieldDetentStrength, "7.25", func(s Settings) bool { return s.DetentStrength == 7.25 }},
		{FieldMinAngle, "-1.5", func(s Settings) bool { return s.MinAngle == -1.5 }},
		{FieldMaxAngle, "4", func(s Settings) bool { return s.MaxAngle == 4 }},
		{FieldBounded, "false", func(s Settings) bool { return !s.Bounded }},
		{FieldBounded, "1", func(s Settings) bool { return s.Bounded }},
	}
	for _, tc := range cases {
		got, err := base.WithField(tc.field, tc.raw)
		if err != nil {
			t.Errorf("WithField(%s, %q): %v", tc.field, tc.raw, err)
			continue
		}
		if !tc.check(got) || got.Name != CustomName {
			t.Errorf("WithField(%s, %q)=%+v", tc.field, tc.raw, got)
		}
	}
}

func TestSettings_WithFieldLeavesReceiver(t *testing.T) {
	base := DefaultPresets()[PresetVolume]
	if _, err := base.WithField(FieldNumDetents, "3"); err != nil {
		t.Fatal(err)
	}
	if base.NumDetents != 100 || base.Name != "Volume Knob" {
		t.Errorf("receiver modified: %+v", base)
	}
}

func TestSettings_MinGreaterThanMaxAccepted(t *testing.T) {
	s := DefaultPresets()[PresetBounded8]
	s, err := s.WithField(FieldMinAngle, "5")
	if err != nil {
		t.Fatalf("min > max should be accepted: %v", err)
	}
	if s.ValidSpan() {
		t.Errorf("inverted span reported valid")
	}
}

func TestSettings_Validate(t *testing.T) {
	bad := []Settings{
		{NumDetents: -1},
		{StepsPerRevolution: -1},
		{DetentStrength: -2},
		{DetentStrength: math.NaN()},
		{MinAngle: math.Inf(1)},
		{MaxAngle: math.Inf(-1)},
	}
	for i, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("case %d: err=%v, want ErrInvalidValue", i, err)
		}
	}
}
