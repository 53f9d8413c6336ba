// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import "math"

// fullTurn is one revolution in radians. Unbounded detents and steps are
// laid out over this span relative to the calibration offset.
const fullTurn = 2 * math.Pi

// Transform maps a shaft angle to the target angle and proportional gain
// for the position controller. It is a pure function of its inputs.
//
// offset is the calibration offset and only matters when s is unbounded.
// Rounding is math.Round (half away from zero), the same rule Quantize uses.
func Transform(angle float64, s Settings, offset float64) (target, gain float64) {
	gain = s.DetentStrength

	if s.Bounded {
		if !s.ValidSpan() || s.NumDetents <= 0 {
			return clamp(angle, s.MinAngle, s.MaxAngle), gain
		}
		spacing := s.Span() / float64(s.NumDetents)
		i, _ := DetentIndex(angle, s, offset)
		target = s.MinAngle + float64(i)*spacing
		return clamp(target, s.MinAngle, s.MaxAngle), gain
	}

	if s.NumDetents <= 0 {
		// Smooth: hold where the shaft is.
		return angle, gain
	}

	spacing := fullTurn / float64(s.NumDetents)
	return offset + math.Round((angle-offset)/spacing)*spacing, gain
}

// DetentIndex returns the detent the shaft snaps to. ok is false when the
// settings have no detents (smooth or degenerate span), in which case the
// index is 0.
//
// Bounded indices are clamped to [0, NumDetents]. Unbounded indices are
// relative to the calibration offset and unclamped.
func DetentIndex(angle float64, s Settings, offset float64) (index int, ok bool) {
	if s.NumDetents <= 0 {
		return 0, false
	}

	if s.Bounded {
		if !s.ValidSpan() {
			return 0, false
		}
		spacing := s.Span() / float64(s.NumDetents)
		q := clamp((angle-s.MinAngle)/spacing, 0, float64(s.NumDetents))
		return int(math.Round(q)), true
	}

	spacing := fullTurn / float64(s.NumDetents)
	return roundIndex((angle - offset) / spacing), true
}

// maxIndex bounds unbounded detent and step indices. Float to int
// conversion is undefined beyond the int range.
const maxIndex = math.MaxInt32

// roundIndex rounds q and saturates it to [-maxIndex, maxIndex].
func roundIndex(q float64) int {
	return int(clamp(math.Round(q), -maxIndex, maxIndex))
}

// clamp limits v to [lo, hi]. When lo > hi (an inverted span) the lower
// bound wins, which keeps the result deterministic.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
