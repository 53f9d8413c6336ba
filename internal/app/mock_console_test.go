// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/logging"
)

func TestRunMockConsole(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	var out syncBuffer
	if err := RunMockConsole(ctx, logging.Discard(), &out, 40*time.Millisecond); err != nil {
		t.Fatalf("RunMockConsole: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "--- Current Knob Settings ---\nName: Unbounded 12 Detents\n") {
		t.Errorf("settings dump missing:\n%s", got)
	}
	if !strings.Contains(got, "STEP:0\n") {
		t.Errorf("expected initial STEP:0 line:\n%s", got)
	}
	if !strings.Contains(got, "Loaded preset 2: Bounded 0-180 8 Detents") {
		t.Errorf("expected a preset switch:\n%s", got)
	}
}
