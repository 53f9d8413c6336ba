// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"math"
	"testing"
)

func TestQuantize_VolumeHalfTurn(t *testing.T) {
	s := Settings{Bounded: true, MinAngle: 0, MaxAngle: 2 * math.Pi, StepsPerRevolution: 100}
	if got := Quantize(math.Pi, s, 0); got != 50 {
		t.Errorf("Quantize(pi)=%d, want 50", got)
	}
}

func TestQuantize_NoStepOutput(t *testing.T) {
	for _, s := range []Settings{
		{Bounded: true, MinAngle: 0, MaxAngle: 1},
		{Bounded: false},
	} {
		for _, a := range []float64{-9, 0, 0.5, 12} {
			if got := Quantize(a, s, 0); got != 0 {
				t.Errorf("bounded=%v Quantize(%v)=%d, want 0", s.Bounded, a, got)
			}
		}
	}
}

func TestQuantize_BoundedMonotonic(t *testing.T) {
	for _, steps := range []int{1, 2, 8, 100} {
		s := Settings{Bounded: true, MinAngle: -0.5, MaxAngle: 2.5, StepsPerRevolution: steps}

		prev := -1
		seen := map[int]bool{}
		sweep(s.MinAngle, s.MaxAngle+1e-9, 0.0005, func(a float64) {
			step := Quantize(a, s, 0)
			if step < prev {
				t.Fatalf("steps=%d angle=%v: step went down %d -> %d", steps, a, prev, step)
			}
			prev = step
			seen[step] = true
		})

		if Quantize(s.MinAngle, s, 0) != 0 {
			t.Errorf("steps=%d: min angle should be step 0", steps)
		}
		if Quantize(s.MaxAngle, s, 0) != steps {
			t.Errorf("steps=%d: max angle should be step %d", steps, steps)
		}
		for i := 0; i <= steps; i++ {
			if !seen[i] {
				t.Errorf("steps=%d: step %d never reached", steps, i)
			}
		}
	}
}

func TestQuantize_BoundedClampsOutside(t *testing.T) {
	s := Settings{Bounded: true, MinAngle: 0, MaxAngle: math.Pi, StepsPerRevolution: 8}
	if got := Quantize(-40, s, 0); got != 0 {
		t.Errorf("below range: %d, want 0", got)
	}
	if got := Quantize(40, s, 0); got != 8 {
		t.Errorf("above range: %d, want 8", got)
	}
}

func TestQuantize_UnboundedUnclamped(t *testing.T) {
	s := Settings{StepsPerRevolution: 12}
	width := 2 * math.Pi / 12

	cases := []struct {
		angle, offset float64
		want          int
	}{
		{0, 0, 0},
		{width * 3, 0, 3},
		{-width * 3, 0, -3},
		{2 * math.Pi * 10, 0, 120},
		{1 + width*2, 1, 2},
		{1 - width*7.2, 1, -7},
	}
	for _, tc := range cases {
		if got := Quantize(tc.angle, s, tc.offset); got != tc.want {
			t.Errorf("Quantize(%v, offset=%v)=%d, want %d", tc.angle, tc.offset, got, tc.want)
		}
	}
}

func TestQuantize_RoundsHalfAwayFromZero(t *testing.T) {
	s := Settings{StepsPerRevolution: 4}
	width := 2 * math.Pi / 4

	if got := Quantize(width*0.5, s, 0); got != 1 {
		t.Errorf("+0.5 step: %d, want 1", got)
	}
	if got := Quantize(-width*0.5, s, 0); got != -1 {
		t.Errorf("-0.5 step: %d, want -1", got)
	}
}
