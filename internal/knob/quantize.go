// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import "math"

// Quantize maps a shaft angle to the reported step index.
//
// Bounded: 0..StepsPerRevolution spread over [MinAngle, MaxAngle].
// Unbounded: one StepsPerRevolution per full turn from the calibration
// offset, any sign, no limit. StepsPerRevolution == 0 means no step output
// and always yields 0, as does a degenerate bounded span.
func Quantize(angle float64, s Settings, offset float64) int {
	if s.StepsPerRevolution <= 0 {
		return 0
	}

	if s.Bounded {
		if !s.ValidSpan() {
			return 0
		}
		span := s.Span()
		inSpan := clamp(angle-s.MinAngle, 0, span)
		width := span / float64(s.StepsPerRevolution)
		step := int(math.Round(inSpan / width))
		return clampInt(step, 0, s.StepsPerRevolution)
	}

	width := fullTurn / float64(s.StepsPerRevolution)
	return roundIndex((angle - offset) / width)
}
