// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/app"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/logging"
)

func main() {
	level := flag.String("log-level", "info", "debug, info, warn or error")
	presetEvery := flag.Duration("preset-every", 0, "load the next preset at this interval (0 keeps the first)")
	flag.Parse()

	log.Println("starting haptic knob (mock console)")

	logger, err := logging.New(*level)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockConsole(ctx, logger, os.Stdout, *presetEvery); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
