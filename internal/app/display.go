package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/display"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// displayState holds the latest knob data received over MQTT.
type displayState struct {
	mu sync.Mutex

	settings knob.Settings
	step     int
	haveStep bool
	dirty    bool
}

func (s *displayState) onStep(payload []byte) error {
	step, err := knob.ParseStep(string(payload))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveStep || step != s.step {
		s.dirty = true
	}
	s.step = step
	s.haveStep = true
	return nil
}

func (s *displayState) onSettings(payload []byte) error {
	var settings knob.Settings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return fmt.Errorf("settings unmarshal: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings != s.settings {
		s.dirty = true
	}
	s.settings = settings
	return nil
}

// frame renders the current state if it changed since the last call.
func (s *displayState) frame() (*image1bit.VerticalLSB, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil, false
	}
	s.dirty = false
	return display.Render(s.settings, s.step, s.haveStep), true
}

// RunDisplay shows the knob state on an SSD1306 OLED until ctx is canceled.
func RunDisplay(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "display")

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, cfg.DisplayI2CAddr, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	logger.Info("display initialized", "addr", fmt.Sprintf("0x%02X", cfg.DisplayI2CAddr))

	if err := dev.Draw(dev.Bounds(), splash(), image.Point{}); err != nil {
		logger.Warn("splash failed", "error", err)
	}

	state := &displayState{dirty: true}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribe(client, cfg.TopicSettings, func(_ mqtt.Client, msg mqtt.Message) {
		if err := state.onSettings(msg.Payload()); err != nil {
			logger.Warn("bad settings message", "error", err)
		}
	}, logger); err != nil {
		return err
	}
	if err := subscribe(client, cfg.TopicStep, func(_ mqtt.Client, msg mqtt.Message) {
		if err := state.onStep(msg.Payload()); err != nil {
			logger.Warn("bad step message", "error", err)
		}
	}, logger); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			img, changed := state.frame()
			if !changed {
				continue
			}
			if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
				logger.Warn("draw failed", "error", err)
			}
		}
	}
}

func splash() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, display.Width, display.Height))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(18, 26)
	drawer.DrawBytes([]byte("Haptic Knob"))

	drawer.Dot = fixed.P(18, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(32, 56)
	drawer.DrawBytes([]byte("daemon"))

	return img
}
