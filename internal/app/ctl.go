// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// CtlRequest is the knobctl command line. Exactly one action may be set.
type CtlRequest struct {
	Preset    int    // -1 for none
	Set       string // "field=value"
	Bounded   string // "true" or "false"
	Calibrate bool
	Dump      bool
}

// ErrNoAction is returned by BuildOp when the request names no action.
var ErrNoAction = errors.New("no action given")

// BuildOp turns a knobctl request into an op.
func BuildOp(req CtlRequest) (knob.Op, error) {
	var ops []knob.Op

	if req.Preset >= 0 {
		ops = append(ops, knob.SwitchPreset{Index: req.Preset})
	}
	if req.Set != "" {
		field, value, ok := strings.Cut(req.Set, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("-set wants field=value, got %q", req.Set)
		}
		ops = append(ops, knob.SetField{Field: knob.Field(strings.TrimSpace(field)), Value: strings.TrimSpace(value)})
	}
	if req.Bounded != "" {
		b, err := strconv.ParseBool(req.Bounded)
		if err != nil {
			return nil, fmt.Errorf("-bounded wants true or false, got %q", req.Bounded)
		}
		ops = append(ops, knob.SetBounded{Bounded: b})
	}
	if req.Calibrate {
		ops = append(ops, knob.Calibrate{})
	}
	if req.Dump {
		ops = append(ops, knob.ReportSettings{})
	}

	switch len(ops) {
	case 0:
		return nil, ErrNoAction
	case 1:
		return ops[0], nil
	default:
		return nil, fmt.Errorf("only one action per call, got %d", len(ops))
	}
}

// RunCtl sends op to the daemon over MQTT and returns the daemon's status
// line, followed by the settings dump when the op changed them or asked
// for them.
func RunCtl(ctx context.Context, cfg *config.Config, logger *slog.Logger, op knob.Op, timeout time.Duration) (string, error) {
	logger = logger.With("component", "ctl")
	payload, err := knob.MarshalOp(op)
	if err != nil {
		return "", err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDCtl, logger)
	if err != nil {
		return "", err
	}
	defer client.Disconnect(250)

	statusCh := make(chan string, 1)
	settingsCh := make(chan knob.Settings, 1)

	if err := subscribe(client, cfg.TopicStatus, func(_ mqtt.Client, msg mqtt.Message) {
		select {
		case statusCh <- string(msg.Payload()):
		default:
		}
	}, logger); err != nil {
		return "", err
	}
	if err := subscribe(client, cfg.TopicSettings, func(_ mqtt.Client, msg mqtt.Message) {
		// Retained copies predate our op.
		if msg.Retained() {
			return
		}
		var s knob.Settings
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			logger.Warn("bad settings message", "error", err)
			return
		}
		select {
		case settingsCh <- s:
		default:
		}
	}, logger); err != nil {
		return "", err
	}

	token := client.Publish(cfg.TopicCommand, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return "", fmt.Errorf("publish to %s: timed out", cfg.TopicCommand)
	}
	if token.Error() != nil {
		return "", fmt.Errorf("publish to %s: %w", cfg.TopicCommand, token.Error())
	}
	logger.Debug("op sent", "topic", cfg.TopicCommand, "payload", string(payload))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var status string
	select {
	case status = <-statusCh:
	case <-ctx.Done():
		return "", fmt.Errorf("no reply from daemon on %s: %w", cfg.TopicStatus, ctx.Err())
	}

	if !expectsSettings(op, status) {
		return status, nil
	}
	select {
	case s := <-settingsCh:
		return status + "\n" + knob.FormatSettings(s), nil
	case <-ctx.Done():
		return status, nil
	}
}

// expectsSettings reports whether the daemon publishes settings after
// answering op with status.
func expectsSettings(op knob.Op, status string) bool {
	if _, ok := op.(knob.ReportSettings); ok {
		return true
	}
	return !strings.HasPrefix(status, "Error: ") && !strings.HasPrefix(status, "Info: ")
}
