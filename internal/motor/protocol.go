// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Line prefixes of the board protocol. The board prints one ANGLE line
// per control cycle and reads one command line back.
const (
	AnglePrefix  = "ANGLE:"
	TargetPrefix = "TARGET:"
	GainPrefix   = "GAIN:"
)

// ErrNotAngle is returned by ParseAngleLine for lines that are not angle
// reports (boot banners, debug prints).
var ErrNotAngle = errors.New("not an angle line")

// ParseAngleLine parses "ANGLE:<rad>".
func ParseAngleLine(line string) (float64, error) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, AnglePrefix)
	if !ok {
		return 0, ErrNotAngle
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return 0, fmt.Errorf("angle line %q: %w", line, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("angle line %q: not finite", line)
	}
	return v, nil
}

// FormatCommand renders "TARGET:<rad> GAIN:<p>" without a line terminator.
func FormatCommand(target, gain float64) string {
	return fmt.Sprintf("%s%f %s%.3f", TargetPrefix, target, GainPrefix, gain)
}

// ParseCommand is the inverse of FormatCommand. The simulated board and
// the tests use it.
func ParseCommand(line string) (target, gain float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("command line %q: want 2 fields, got %d", line, len(fields))
	}
	t, ok := strings.CutPrefix(fields[0], TargetPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("command line %q: missing %s", line, TargetPrefix)
	}
	g, ok := strings.CutPrefix(fields[1], GainPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("command line %q: missing %s", line, GainPrefix)
	}
	if target, err = strconv.ParseFloat(t, 64); err != nil {
		return 0, 0, fmt.Errorf("command target %q: %w", t, err)
	}
	if gain, err = strconv.ParseFloat(g, 64); err != nil {
		return 0, 0, fmt.Errorf("command gain %q: %w", g, err)
	}
	return target, gain, nil
}
