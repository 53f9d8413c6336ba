// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motor talks to whatever spins the knob: the motor driver board
// over serial, or a simulated shaft.
package motor

import (
	"context"
	"errors"
)

// ErrLinkDown means the connection to the board is gone. Reconnecting may
// bring it back; retrying on the same Link will not.
var ErrLinkDown = errors.New("link down")

// Link is the control-loop collaborator. It reports the shaft angle once
// per cycle and accepts the resulting target/gain command, so the pace of
// NextAngle is the pace of the control loop.
type Link interface {
	// NextAngle blocks until the next shaft angle (rad) is available.
	NextAngle(ctx context.Context) (float64, error)
	// Command sets the position controller target (rad) and P gain.
	Command(target, gain float64) error
	Close() error
}
