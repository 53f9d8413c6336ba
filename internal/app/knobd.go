// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/motor"
)

// RunKnobDaemon wires the configured link, publishers, MQTT command topic
// and web server around a Daemon and runs it until ctx is canceled. STEP
// lines and status go to out.
func RunKnobDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return err
	}
	ctrl, err := knob.NewController(presets, cfg.InitialPreset)
	if err != nil {
		return fmt.Errorf("initial preset: %w", err)
	}
	logger.Info("presets loaded", "count", len(presets), "file", cfg.PresetsFile)

	link, err := openLink(cfg, logger)
	if err != nil {
		return err
	}
	defer link.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pubs := MultiPublisher{NewWriterPublisher(out)}

	var hub *Hub
	if cfg.WebServerPort > 0 {
		hub = NewHub(logger)
		go hub.Run(ctx)
		pubs = append(pubs, hub)
	}

	var daemon *Daemon
	if cfg.MQTTBroker != "" {
		client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDKnob, logger)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		pubs = append(pubs, NewMQTTPublisher(client, TopicsFromConfig(cfg)))

		daemon = newDaemonFromConfig(ctrl, link, pubs, logger, cfg)
		if err := subscribeCommands(client, cfg.TopicCommand, daemon, logger); err != nil {
			return err
		}
	} else {
		logger.Info("MQTT disabled")
		daemon = newDaemonFromConfig(ctrl, link, pubs, logger, cfg)
	}

	errc := make(chan error, 2)
	if hub != nil {
		web := NewWebServer(daemon, hub, logger)
		go func() {
			if err := web.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.WebServerPort)); err != nil {
				errc <- fmt.Errorf("web server: %w", err)
			}
		}()
	}
	go func() { errc <- daemon.Run(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return nil
	}
}

func newDaemonFromConfig(ctrl *knob.Controller, link motor.Link, pub Publisher, logger *slog.Logger, cfg *config.Config) *Daemon {
	return NewDaemon(ctrl, link, pub, logger, DaemonOptions{
		CycleEvery: time.Duration(cfg.CyclePublishInterval) * time.Millisecond,
	})
}

// openLink connects to the serial board, reconnecting whenever it drops,
// or builds the simulated knob.
func openLink(cfg *config.Config, logger *slog.Logger) (motor.Link, error) {
	switch cfg.AngleSource {
	case config.AngleSourceSerial:
		serialLogger := logger.With("component", "serial", "port", cfg.SerialPort)
		dial := func() (motor.Link, error) {
			l, err := motor.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate, serialLogger)
			if err != nil {
				return nil, err
			}
			return l, nil
		}
		retry := time.Duration(cfg.SerialRetry) * time.Millisecond
		return motor.NewReconnectingLink(dial, retry, serialLogger), nil
	default:
		sim := motor.DefaultSimConfig()
		sim.Interval = time.Duration(cfg.ControlInterval) * time.Millisecond
		sim.HandAmplitude = cfg.SimHandAmplitude
		sim.HandPeriod = time.Duration(cfg.SimHandPeriod) * time.Millisecond
		logger.Info("using simulated knob", "interval", sim.Interval, "hand_period", sim.HandPeriod)
		return motor.NewSimLink(sim), nil
	}
}
