// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"fmt"
	"strconv"
	"strings"
)

// StepPrefix starts every step report line.
const StepPrefix = "STEP:"

const (
	dumpHeader = "--- Current Knob Settings ---"
	dumpFooter = "-----------------------------"
)

// FormatStep renders a step report, e.g. "STEP:-3".
func FormatStep(step int) string {
	return StepPrefix + strconv.Itoa(step)
}

// ParseStep parses a line produced by FormatStep.
func ParseStep(line string) (int, error) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, StepPrefix)
	if !ok {
		return 0, fmt.Errorf("not a step report: %q", line)
	}
	step, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("step report %q: %w", line, err)
	}
	return step, nil
}

// FormatSettings renders the human-readable settings dump. Min/max angles
// are only listed for bounded settings.
func FormatSettings(s Settings) string {
	var b strings.Builder
	b.WriteString(dumpHeader + "\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	if s.Bounded {
		b.WriteString("Bounded: YES\n")
		fmt.Fprintf(&b, "Min Angle (rad): %.3f\n", s.MinAngle)
		fmt.Fprintf(&b, "Max Angle (rad): %.3f\n", s.MaxAngle)
	} else {
		b.WriteString("Bounded: NO\n")
	}
	fmt.Fprintf(&b, "Num Detents: %d\n", s.NumDetents)
	fmt.Fprintf(&b, "Detent Strength (P): %.2f\n", s.DetentStrength)
	fmt.Fprintf(&b, "Steps/Revolution: %d\n", s.StepsPerRevolution)
	b.WriteString(dumpFooter + "\n")
	return b.String()
}
