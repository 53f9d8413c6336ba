// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestSimLink_SettlesOnTarget(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.HandPeriod = 0
	sim := NewSimLink(cfg)
	defer sim.Close()

	if err := sim.Command(1.0, 10); err != nil {
		t.Fatal(err)
	}
	var angle float64
	for i := 0; i < 1000; i++ {
		angle = sim.Step(0.01)
	}
	if math.Abs(angle-1.0) > 1e-3 {
		t.Errorf("angle=%v, want ~1.0", angle)
	}
}

func TestSimLink_Deterministic(t *testing.T) {
	a := NewSimLink(DefaultSimConfig())
	b := NewSimLink(DefaultSimConfig())
	defer a.Close()
	defer b.Close()

	for i := 0; i < 500; i++ {
		x := a.Step(0.01)
		y := b.Step(0.01)
		if x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
		_ = a.Command(math.Round(x), 5)
		_ = b.Command(math.Round(y), 5)
	}
}

func TestSimLink_HandTurnsShaft(t *testing.T) {
	sim := NewSimLink(DefaultSimConfig())
	defer sim.Close()

	maxAngle := 0.0
	for i := 0; i < 400; i++ { // half a hand period
		maxAngle = math.Max(maxAngle, sim.Step(0.01))
	}
	if maxAngle < 1.0 {
		t.Errorf("hand only reached %v rad", maxAngle)
	}
}

func TestSimLink_NextAnglePaced(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Interval = time.Millisecond
	sim := NewSimLink(cfg)
	defer sim.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if _, err := sim.NextAngle(ctx); err != nil {
			t.Fatalf("NextAngle: %v", err)
		}
	}
}

func TestSimLink_NextAngleCancelled(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Interval = time.Hour
	sim := NewSimLink(cfg)
	defer sim.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.NextAngle(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err=%v, want context.Canceled", err)
	}
}
