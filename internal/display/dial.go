// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display draws the knob state for a 128x64 monochrome OLED.
package display

import (
	"math"
	"strings"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// defaultDialSteps is the dial resolution for unbounded knobs that report
// no steps.
const defaultDialSteps = 12

// defaultSliderSteps is the slider length when a volume knob reports no steps.
const defaultSliderSteps = 100

// maxDialTicks is the densest unbounded dial face still drawn with ticks.
const maxDialTicks = 72

// Tick is one mark on the dial face.
type Tick struct {
	Angle float64 // screen radians, same convention as NeedleAngle
	Major bool
}

// IsSlider reports whether the settings are shown as a volume slider
// instead of a dial.
func IsSlider(s knob.Settings) bool {
	return strings.Contains(strings.ToLower(s.Name), "volume")
}

// NeedlePosition returns where the needle sits as a fraction of the dial.
//
// Bounded: step/steps of the travel arc, clamped to [0, 1].
// Unbounded: step modulo steps around the full dial, in [0, 1).
func NeedlePosition(s knob.Settings, step int) float64 {
	if s.Bounded {
		total := s.StepsPerRevolution
		if total <= 0 {
			total = 1
		}
		return clamp01(float64(step) / float64(total))
	}

	n := s.StepsPerRevolution
	if n <= 0 {
		n = defaultDialSteps
	}
	m := step % n
	if m < 0 {
		m += n
	}
	return float64(m) / float64(n)
}

// SliderFraction returns the filled fraction of the volume slider.
func SliderFraction(s knob.Settings, step int) float64 {
	total := s.StepsPerRevolution
	if total <= 0 {
		total = defaultSliderSteps
	}
	return clamp01(float64(step) / float64(total))
}

// NeedleAngle returns the needle direction on screen in radians, measured
// clockwise from the +x axis (screen y grows downward). Unbounded dials
// start at twelve o'clock; bounded dials centre their travel arc on twelve
// o'clock.
func NeedleAngle(s knob.Settings, step int) float64 {
	pos := NeedlePosition(s, step)
	if !s.Bounded {
		return pos*2*math.Pi - math.Pi/2
	}

	span := s.Span()
	if span <= 0 {
		span = 0.001
	}
	return travelAngle(s, s.MinAngle+pos*span)
}

// travelAngle maps a bounded shaft angle onto the screen so the middle of
// the travel sits at twelve o'clock.
func travelAngle(s knob.Settings, rad float64) float64 {
	mid := (s.MinAngle + s.MaxAngle) / 2
	return rad - mid - math.Pi/2
}

// DialTicks returns the marks drawn on the dial face.
//
// Unbounded: one tick per step around the full dial, none above
// maxDialTicks. Every tick is major up to 16 steps, otherwise every quarter.
// Bounded: num_detents+1 ticks across the travel arc with the ends and the
// midpoint major. No ticks without detents.
func DialTicks(s knob.Settings) []Tick {
	if !s.Bounded {
		n := s.StepsPerRevolution
		if n <= 0 {
			n = defaultDialSteps
		}
		if n > maxDialTicks {
			return nil
		}
		quarter := max(1, n/4)
		ticks := make([]Tick, n)
		for i := range ticks {
			ticks[i] = Tick{
				Angle: float64(i)/float64(n)*2*math.Pi - math.Pi/2,
				Major: n <= 16 || i%quarter == 0,
			}
		}
		return ticks
	}

	n := s.NumDetents
	if n <= 0 {
		return nil
	}
	from, to := TravelArc(s)
	ticks := make([]Tick, n+1)
	for i := range ticks {
		ticks[i] = Tick{
			Angle: from + float64(i)*(to-from)/float64(n),
			Major: i == 0 || i == n || (n > 4 && i%(n/2) == 0),
		}
	}
	return ticks
}

// TravelArc returns the screen angles of the start and end of a bounded
// knob's travel. The arc never closes into a full circle.
func TravelArc(s knob.Settings) (from, to float64) {
	span := s.Span()
	if span <= 0 {
		span = 0.001
	}
	span = math.Min(span, 2*math.Pi-0.01)
	from = travelAngle(s, s.MinAngle)
	return from, from + span
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
