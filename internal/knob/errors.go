// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import "errors"

var (
	// ErrOutOfRange is returned when a preset index is outside the table.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidValue is returned when a field value cannot be parsed or
	// violates the field's constraint. The field is left unchanged.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidOperation is informational: the operation was skipped
	// because it has no meaning in the current mode (calibrating while bounded).
	ErrInvalidOperation = errors.New("invalid operation")
)
