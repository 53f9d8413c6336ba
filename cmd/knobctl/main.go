// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/app"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/logging"
)

func main() {
	configPath := flag.String("config", "knob_config.txt", "path to the configuration file")
	var req app.CtlRequest
	flag.IntVar(&req.Preset, "preset", -1, "load preset N")
	flag.StringVar(&req.Set, "set", "", "set one field, as field=value")
	flag.StringVar(&req.Bounded, "bounded", "", "switch bounded mode (true or false)")
	flag.BoolVar(&req.Calibrate, "calibrate", false, "make the current angle the zero point")
	flag.BoolVar(&req.Dump, "dump", false, "print the current settings")
	timeout := flag.Duration("timeout", 3*time.Second, "how long to wait for the daemon")
	flag.Parse()

	op, err := app.BuildOp(req)
	if errors.Is(err, app.ErrNoAction) {
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("bad arguments: %v", err)
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	out, err := app.RunCtl(context.Background(), cfg, logger, op, *timeout)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	fmt.Print(out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Println()
	}
}
