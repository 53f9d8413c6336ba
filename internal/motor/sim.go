// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motor

import (
	"context"
	"math"
	"sync"
	"time"
)

// SimConfig describes the simulated knob.
type SimConfig struct {
	Interval time.Duration // control cycle period

	// HandAmplitude and HandPeriod drive a sinusoidal "hand" that drags the
	// shaft back and forth. A zero period disables the hand.
	HandAmplitude float64
	HandPeriod    time.Duration
	HandStiffness float64

	Inertia float64
	Damping float64
}

// DefaultSimConfig returns a shaft that a hand stiffer than any preset's
// detent strength can turn through the detents.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Interval:      10 * time.Millisecond,
		HandAmplitude: 3.0,
		HandPeriod:    8 * time.Second,
		HandStiffness: 40,
		Inertia:       0.05,
		Damping:       1.5,
	}
}

// SimLink is a spring-damper shaft. The motor pulls it toward the commanded
// target with the commanded gain, the hand pulls it toward the hand angle.
// Time is simulated: identical Step sequences give identical angles.
type SimLink struct {
	cfg SimConfig

	mu       sync.Mutex
	t        float64 // simulated seconds
	angle    float64
	velocity float64
	target   float64
	gain     float64

	ticker *time.Ticker
}

// NewSimLink creates a simulated knob at rest at angle 0.
func NewSimLink(cfg SimConfig) *SimLink {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSimConfig().Interval
	}
	if cfg.Inertia <= 0 {
		cfg.Inertia = DefaultSimConfig().Inertia
	}
	return &SimLink{
		cfg:    cfg,
		ticker: time.NewTicker(cfg.Interval),
	}
}

// NextAngle waits for the next control tick, advances the simulation by
// one interval and returns the shaft angle.
func (s *SimLink) NextAngle(ctx context.Context) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.ticker.C:
	}
	return s.Step(s.cfg.Interval.Seconds()), nil
}

// Command stores the motor target and gain for the following steps.
func (s *SimLink) Command(target, gain float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = target
	s.gain = gain
	return nil
}

// Close stops the pacing ticker.
func (s *SimLink) Close() error {
	s.ticker.Stop()
	return nil
}

// simSubsteps keeps semi-implicit Euler stable at the stiffest gains.
const simSubsteps = 10

// Step advances the shaft by dt seconds and returns the new angle.
func (s *SimLink) Step(dt float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := dt / simSubsteps
	for i := 0; i < simSubsteps; i++ {
		torque := s.gain*(s.target-s.angle) - s.cfg.Damping*s.velocity
		if s.cfg.HandPeriod > 0 {
			torque += s.cfg.HandStiffness * (s.handAngle() - s.angle)
		}
		s.velocity += torque / s.cfg.Inertia * h
		s.angle += s.velocity * h
		s.t += h
	}
	return s.angle
}

// Angle returns the current shaft angle without advancing time.
func (s *SimLink) Angle() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

func (s *SimLink) handAngle() float64 {
	return s.cfg.HandAmplitude * math.Sin(2*math.Pi*s.t/s.cfg.HandPeriod.Seconds())
}
