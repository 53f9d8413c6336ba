// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import "math"

// Indices of the canonical presets in DefaultPresets.
const (
	PresetUnboundedSmooth = iota
	PresetUnbounded12
	PresetBounded8
	PresetVolume
	PresetFine
	PresetSwitch
)

// DefaultPresets returns a fresh copy of the canonical preset table.
func DefaultPresets() []Settings {
	return []Settings{
		{
			Name:               "Unbounded Smooth",
			NumDetents:         0,
			DetentStrength:     5,
			StepsPerRevolution: 36,
		},
		{
			Name:               "Unbounded 12 Detents",
			NumDetents:         12,
			DetentStrength:     10,
			StepsPerRevolution: 12,
		},
		{
			Name:               "Bounded 0-180 8 Detents",
			Bounded:            true,
			MinAngle:           0,
			MaxAngle:           math.Pi,
			NumDetents:         8,
			DetentStrength:     10,
			StepsPerRevolution: 8,
		},
		{
			Name:               "Volume Knob",
			Bounded:            true,
			MinAngle:           0,
			MaxAngle:           2 * math.Pi,
			NumDetents:         100,
			DetentStrength:     5,
			StepsPerRevolution: 100,
		},
		{
			Name:               "Fine Unbounded",
			NumDetents:         72,
			DetentStrength:     3,
			StepsPerRevolution: 72,
		},
		{
			// Three positions over a quarter turn.
			Name:               "Switch",
			Bounded:            true,
			MinAngle:           0,
			MaxAngle:           math.Pi / 2,
			NumDetents:         2,
			DetentStrength:     25,
			StepsPerRevolution: 2,
		},
	}
}
