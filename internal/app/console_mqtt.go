package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// RunConsoleMQTT prints everything the knob daemon publishes until ctx is
// canceled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger = logger.With("component", "console")
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	topics := TopicsFromConfig(cfg)
	var mu sync.Mutex
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		line, err := formatConsoleMessage(topics, msg.Topic(), msg.Payload())
		if err != nil {
			logger.Warn("bad message", "topic", msg.Topic(), "error", err)
			return
		}
		mu.Lock()
		fmt.Fprintln(out, line)
		mu.Unlock()
	}

	for _, topic := range []string{topics.Step, topics.Settings, topics.Status, topics.Cycle} {
		if topic == "" {
			continue
		}
		if err := subscribe(client, topic, handler, logger); err != nil {
			return err
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// formatConsoleMessage renders one daemon message for the terminal.
func formatConsoleMessage(t Topics, topic string, payload []byte) (string, error) {
	switch topic {
	case t.Step:
		step, err := knob.ParseStep(string(payload))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[STEP]   %d", step), nil

	case t.Settings:
		var s knob.Settings
		if err := json.Unmarshal(payload, &s); err != nil {
			return "", fmt.Errorf("settings unmarshal: %w", err)
		}
		return strings.TrimRight(knob.FormatSettings(s), "\n"), nil

	case t.Status:
		return "[STATUS] " + string(payload), nil

	case t.Cycle:
		var c knob.CycleResult
		if err := json.Unmarshal(payload, &c); err != nil {
			return "", fmt.Errorf("cycle unmarshal: %w", err)
		}
		return fmt.Sprintf("[CYCLE]  angle=%7.3f target=%7.3f gain=%6.2f step=%d",
			c.Angle, c.Target, c.Gain, c.Step), nil

	default:
		return "", fmt.Errorf("unexpected topic %q", topic)
	}
}
