// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"errors"
	"testing"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

func TestLoadPresets_NoFile(t *testing.T) {
	table, err := LoadPresets("")
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != len(knob.DefaultPresets()) {
		t.Errorf("got %d presets, want the canonical %d", len(table), len(knob.DefaultPresets()))
	}
}

func TestLoadPresets_Appends(t *testing.T) {
	path := writeFile(t, "presets.yaml", `
presets:
  - name: Coarse
    bounded: true
    min_angle: 0
    max_angle: 3.0
    num_detents: 4
    detent_strength: 20
    steps_per_revolution: 4
  - name: Ratchet
    num_detents: 24
    detent_strength: 15.5
    steps_per_revolution: 24
`)
	table, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(table) != 8 {
		t.Fatalf("got %d presets, want 8", len(table))
	}
	for i, p := range knob.DefaultPresets() {
		if table[i] != p {
			t.Errorf("canonical preset %d moved or changed: %+v", i, table[i])
		}
	}

	want := knob.Settings{Name: "Coarse", Bounded: true, MinAngle: 0, MaxAngle: 3.0, NumDetents: 4, DetentStrength: 20, StepsPerRevolution: 4}
	if table[6] != want {
		t.Errorf("preset 6=%+v, want %+v", table[6], want)
	}
	if table[7].Name != "Ratchet" || table[7].Bounded || table[7].DetentStrength != 15.5 {
		t.Errorf("preset 7=%+v", table[7])
	}
}

func TestLoadPresets_Invalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
presets:
  - name: Broken
    num_detents: -2
`)
	if _, err := LoadPresets(path); !errors.Is(err, knob.ErrInvalidValue) {
		t.Errorf("err=%v, want ErrInvalidValue", err)
	}

	for name, content := range map[string]string{
		"unknown field": "presets:\n  - name: X\n    colour: red\n",
		"no name":       "presets:\n  - num_detents: 3\n",
		"not yaml":      "presets: [\n",
	} {
		if _, err := LoadPresets(writeFile(t, "bad.yaml", content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
