// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/motor"
)

// RunMockConsole turns a simulated knob and prints its STEP lines to out,
// with no broker or hardware involved. Every presetEvery the next preset is
// loaded; zero keeps the first one.
func RunMockConsole(ctx context.Context, logger *slog.Logger, out io.Writer, presetEvery time.Duration) error {
	ctrl, err := knob.NewController(knob.DefaultPresets(), knob.PresetUnbounded12)
	if err != nil {
		return err
	}
	link := motor.NewSimLink(motor.DefaultSimConfig())
	defer link.Close()

	d := NewDaemon(ctrl, link, NewWriterPublisher(out), logger, DaemonOptions{})

	if presetEvery > 0 {
		go cyclePresets(ctx, d, presetEvery)
	}
	return d.Run(ctx)
}

func cyclePresets(ctx context.Context, d *Daemon, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	n := len(d.Controller().Presets())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			next := (d.Controller().PresetIndex() + 1) % n
			_, _ = d.Apply(knob.SwitchPreset{Index: next})
		}
	}
}
