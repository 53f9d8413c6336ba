// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"math"
	"sort"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func sweep(from, to, step float64, fn func(angle float64)) {
	for a := from; a <= to; a += step {
		fn(a)
	}
}

func TestTransform_GainIsDetentStrength(t *testing.T) {
	for i, s := range DefaultPresets() {
		_, gain := Transform(1.234, s, 0.5)
		if gain != s.DetentStrength {
			t.Errorf("preset %d: gain=%v, want %v", i, gain, s.DetentStrength)
		}
	}
}

func TestTransform_Idempotent(t *testing.T) {
	for i, s := range DefaultPresets() {
		sweep(-10, 10, 0.37, func(a float64) {
			t1, g1 := Transform(a, s, 0.25)
			t2, g2 := Transform(a, s, 0.25)
			if t1 != t2 || g1 != g2 {
				t.Fatalf("preset %d angle %v: (%v,%v) != (%v,%v)", i, a, t1, g1, t2, g2)
			}
		})
	}
}

func TestTransform_BoundedDetentsAtHalfTurn(t *testing.T) {
	s := Settings{Bounded: true, MinAngle: 0, MaxAngle: math.Pi, NumDetents: 8, DetentStrength: 10}

	target, _ := Transform(math.Pi/2, s, 0)
	if target != math.Pi/2 {
		t.Errorf("target=%v, want exactly pi/2", target)
	}
	i, ok := DetentIndex(math.Pi/2, s, 0)
	if !ok || i != 4 {
		t.Errorf("detent index=(%d,%v), want (4,true)", i, ok)
	}
}

func TestTransform_BoundedClamp(t *testing.T) {
	cases := []Settings{
		{Bounded: true, MinAngle: 0, MaxAngle: math.Pi, NumDetents: 8},
		{Bounded: true, MinAngle: -1, MaxAngle: 2, NumDetents: 0},
		{Bounded: true, MinAngle: 0, MaxAngle: 2 * math.Pi, NumDetents: 100},
		{Bounded: true, MinAngle: 0.3, MaxAngle: 1.1, NumDetents: 3},
		{Bounded: true, MinAngle: 1.0, MaxAngle: 1.0005, NumDetents: 5},
	}

	for i, s := range cases {
		sweep(-50, 50, 0.013, func(a float64) {
			target, _ := Transform(a, s, 0)
			if target < s.MinAngle || target > s.MaxAngle {
				t.Fatalf("case %d angle %v: target %v outside [%v, %v]", i, a, target, s.MinAngle, s.MaxAngle)
			}
		})
	}
}

func TestTransform_BoundedDetentCount(t *testing.T) {
	for _, k := range []int{1, 2, 3, 8, 12, 100} {
		s := Settings{Bounded: true, MinAngle: 0.2, MaxAngle: 0.2 + math.Pi, NumDetents: k}

		seen := map[int64]float64{}
		sweep(-2, 6, 0.0005, func(a float64) {
			target, _ := Transform(a, s, 0)
			seen[int64(math.Round(target*1e6))] = target
		})

		if len(seen) != k+1 {
			t.Errorf("k=%d: %d distinct targets, want %d", k, len(seen), k+1)
			continue
		}

		targets := make([]float64, 0, len(seen))
		for _, v := range seen {
			targets = append(targets, v)
		}
		sort.Float64s(targets)

		if !approx(targets[0], s.MinAngle) || !approx(targets[k], s.MaxAngle) {
			t.Errorf("k=%d: endpoints %v..%v, want %v..%v", k, targets[0], targets[k], s.MinAngle, s.MaxAngle)
		}
		spacing := s.Span() / float64(k)
		for i := 1; i <= k; i++ {
			if math.Abs(targets[i]-targets[i-1]-spacing) > 1e-6 {
				t.Errorf("k=%d: gap %d is %v, want %v", k, i, targets[i]-targets[i-1], spacing)
			}
		}
	}
}

func TestTransform_BoundedSmoothIsClampOnly(t *testing.T) {
	s := Settings{Bounded: true, MinAngle: -1, MaxAngle: 1}

	cases := map[float64]float64{-5: -1, -1: -1, -0.25: -0.25, 0.7: 0.7, 1: 1, 9: 1}
	for in, want := range cases {
		got, _ := Transform(in, s, 123)
		if got != want {
			t.Errorf("Transform(%v)=%v, want %v", in, got, want)
		}
	}
}

func TestTransform_DegenerateSpan(t *testing.T) {
	s := Settings{Bounded: true, MinAngle: 1.0, MaxAngle: 1.0005, NumDetents: 10, StepsPerRevolution: 100}

	cases := map[float64]float64{-3: 1.0, 1.0002: 1.0002, 7: 1.0005}
	for in, want := range cases {
		got, _ := Transform(in, s, 0)
		if got != want {
			t.Errorf("Transform(%v)=%v, want %v", in, got, want)
		}
		if step := Quantize(in, s, 0); step != 0 {
			t.Errorf("Quantize(%v)=%d, want 0", in, step)
		}
	}
	if _, ok := DetentIndex(1.0002, s, 0); ok {
		t.Errorf("degenerate span should have no detent index")
	}
}

func TestTransform_InvertedSpanIsDeterministic(t *testing.T) {
	s := Settings{Bounded: true, MinAngle: 2, MaxAngle: 1, NumDetents: 4, StepsPerRevolution: 10}

	sweep(-3, 5, 0.1, func(a float64) {
		t1, _ := Transform(a, s, 0)
		t2, _ := Transform(a, s, 0)
		if t1 != t2 || math.IsNaN(t1) {
			t.Fatalf("angle %v: unstable target %v / %v", a, t1, t2)
		}
		if step := Quantize(a, s, 0); step != 0 {
			t.Fatalf("angle %v: step %d, want 0", a, step)
		}
	})
}

func TestTransform_UnboundedSmoothHoldsAngle(t *testing.T) {
	s := Settings{NumDetents: 0, DetentStrength: 5}
	for _, a := range []float64{-100, -1, 0, 0.5, 42.42} {
		got, _ := Transform(a, s, 3)
		if got != a {
			t.Errorf("Transform(%v)=%v, want unchanged", a, got)
		}
	}
}

func TestTransform_UnboundedTwelveDetents(t *testing.T) {
	s := Settings{NumDetents: 12}
	spacing := 2 * math.Pi / 12

	cases := []struct {
		angle float64
		want  float64
	}{
		{0.0, 0.0},
		{0.2, 0.0},
		{-0.2, 0.0},
		// 0.3 rad is past the half-spacing point (0.2618) so it snaps up.
		{0.3, spacing},
		{spacing * 5.4, spacing * 5},
		{-spacing * 25.2, -spacing * 25},
	}
	for _, tc := range cases {
		got, _ := Transform(tc.angle, s, 0)
		if !approx(got, tc.want) {
			t.Errorf("Transform(%v)=%v, want %v", tc.angle, got, tc.want)
		}
	}
}

func TestTransform_UnboundedLattice(t *testing.T) {
	for _, k := range []int{1, 5, 12, 72} {
		for _, offset := range []float64{0, 0.4, -7.1} {
			s := Settings{NumDetents: k}
			spacing := 2 * math.Pi / float64(k)

			sweep(-30, 30, 0.017, func(a float64) {
				target, _ := Transform(a, s, offset)
				n := (target - offset) / spacing
				if math.Abs(n-math.Round(n)) > 1e-6 {
					t.Fatalf("k=%d offset=%v angle=%v: target %v not on lattice", k, offset, a, target)
				}
				if math.Abs(target-a) > spacing/2+1e-9 {
					t.Fatalf("k=%d offset=%v angle=%v: target %v is not the nearest detent", k, offset, a, target)
				}
			})
		}
	}
}

func TestTransform_FarOutsideTravel(t *testing.T) {
	bounded := Settings{Bounded: true, MinAngle: 0, MaxAngle: math.Pi, NumDetents: 8, DetentStrength: 10, StepsPerRevolution: 8}
	unbounded := DefaultPresets()[PresetUnbounded12]

	cases := []struct {
		angle      float64
		wantTarget float64
		wantDetent int
		wantStep   int
	}{
		{1e19, math.Pi, 8, 8},
		{1e30, math.Pi, 8, 8},
		{-1e19, 0, 0, 0},
		{-1e30, 0, 0, 0},
	}
	for _, tc := range cases {
		target, _ := Transform(tc.angle, bounded, 0)
		detent, _ := DetentIndex(tc.angle, bounded, 0)
		step := Quantize(tc.angle, bounded, 0)
		if !approx(target, tc.wantTarget) || detent != tc.wantDetent || step != tc.wantStep {
			t.Errorf("bounded angle=%g: target=%v detent=%d step=%d, want %v %d %d",
				tc.angle, target, detent, step, tc.wantTarget, tc.wantDetent, tc.wantStep)
		}
	}

	for _, angle := range []float64{1e19, 1e30, -1e19, -1e30} {
		target, _ := Transform(angle, unbounded, 0)
		if math.IsInf(target, 0) || math.Abs(target-angle) > math.Abs(angle)*1e-9 {
			t.Errorf("unbounded angle=%g: target=%v", angle, target)
		}

		detent, _ := DetentIndex(angle, unbounded, 0)
		step := Quantize(angle, unbounded, 0)
		want := maxIndex
		if angle < 0 {
			want = -maxIndex
		}
		if detent != want || step != want {
			t.Errorf("unbounded angle=%g: detent=%d step=%d, want %d", angle, detent, step, want)
		}
		if step == noStep {
			t.Errorf("unbounded angle=%g: step collides with the no-step sentinel", angle)
		}
	}
}
