package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Angle sources for the knob daemon.
const (
	AngleSourceSim    = "sim"
	AngleSourceSerial = "serial"
)

// Config holds all application configuration values.
type Config struct {
	LogLevel string

	// Motor link
	AngleSource      string // "sim" or "serial"
	SerialPort       string
	SerialBaudRate   int
	SerialRetry      int     // milliseconds between reconnect attempts
	ControlInterval  int     // milliseconds, pacing of the simulated knob
	SimHandAmplitude float64 // radians
	SimHandPeriod    int     // milliseconds, 0 leaves the simulated shaft alone

	// Presets
	InitialPreset int
	PresetsFile   string // optional YAML file with extra presets

	// MQTT (empty broker disables MQTT in the daemon)
	MQTTBroker          string
	MQTTClientIDKnob    string
	MQTTClientIDConsole string
	MQTTClientIDDisplay string
	MQTTClientIDCtl     string

	// Topics
	TopicStep     string
	TopicSettings string
	TopicCommand  string
	TopicStatus   string
	TopicCycle    string

	CyclePublishInterval int // milliseconds, 0 disables cycle telemetry

	// Web Server (0 disables)
	WebServerPort int

	// Display
	DisplayI2CBus         string // "" selects the first bus
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every key at its default value.
func Default() *Config {
	return &Config{
		LogLevel: "info",

		AngleSource:      AngleSourceSim,
		SerialPort:       "/dev/ttyACM0",
		SerialBaudRate:   115200,
		SerialRetry:      3000,
		ControlInterval:  10,
		SimHandAmplitude: 3.0,
		SimHandPeriod:    8000,

		InitialPreset: 0,

		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDKnob:    "knob-daemon",
		MQTTClientIDConsole: "knob-console",
		MQTTClientIDDisplay: "knob-display",
		MQTTClientIDCtl:     "knob-ctl",

		TopicStep:     "knob/step",
		TopicSettings: "knob/settings",
		TopicCommand:  "knob/command",
		TopicStatus:   "knob/status",
		TopicCycle:    "knob/cycle",

		CyclePublishInterval: 0,

		WebServerPort: 8080,

		DisplayI2CBus:         "",
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 100,
	}
}

// Load reads the configuration file and returns a Config struct.
// Keys missing from the file keep their Default value.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "LOG_LEVEL":
		c.LogLevel = value

	// Motor link
	case "ANGLE_SOURCE":
		c.AngleSource = strings.ToLower(value)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		return setInt(&c.SerialBaudRate, key, value)
	case "SERIAL_RETRY_INTERVAL":
		return setInt(&c.SerialRetry, key, value)
	case "CONTROL_INTERVAL":
		return setInt(&c.ControlInterval, key, value)
	case "SIM_HAND_AMPLITUDE":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		c.SimHandAmplitude = v
	case "SIM_HAND_PERIOD":
		return setInt(&c.SimHandPeriod, key, value)

	// Presets
	case "INITIAL_PRESET":
		return setInt(&c.InitialPreset, key, value)
	case "PRESETS_FILE":
		c.PresetsFile = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_KNOB":
		c.MQTTClientIDKnob = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_CTL":
		c.MQTTClientIDCtl = value

	// Topics
	case "TOPIC_STEP":
		c.TopicStep = value
	case "TOPIC_SETTINGS":
		c.TopicSettings = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TOPIC_STATUS":
		c.TopicStatus = value
	case "TOPIC_CYCLE":
		c.TopicCycle = value
	case "CYCLE_PUBLISH_INTERVAL":
		return setInt(&c.CyclePublishInterval, key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		return setInt(&c.WebServerPort, key, value)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		return setInt(&c.DisplayUpdateInterval, key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

// validate checks that the loaded values are usable.
func (c *Config) validate() error {
	switch c.AngleSource {
	case AngleSourceSim:
	case AngleSourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required when ANGLE_SOURCE=serial")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be > 0, got %d", c.SerialBaudRate)
		}
		if c.SerialRetry <= 0 {
			return fmt.Errorf("SERIAL_RETRY_INTERVAL must be > 0, got %d", c.SerialRetry)
		}
	default:
		return fmt.Errorf("ANGLE_SOURCE must be %q or %q, got %q", AngleSourceSim, AngleSourceSerial, c.AngleSource)
	}
	if c.ControlInterval <= 0 {
		return fmt.Errorf("CONTROL_INTERVAL must be > 0, got %d", c.ControlInterval)
	}
	if c.SimHandPeriod < 0 {
		return fmt.Errorf("SIM_HAND_PERIOD must be >= 0, got %d", c.SimHandPeriod)
	}
	if c.InitialPreset < 0 {
		return fmt.Errorf("INITIAL_PRESET must be >= 0, got %d", c.InitialPreset)
	}
	if c.CyclePublishInterval < 0 {
		return fmt.Errorf("CYCLE_PUBLISH_INTERVAL must be >= 0, got %d", c.CyclePublishInterval)
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be > 0, got %d", c.DisplayUpdateInterval)
	}
	if c.MQTTBroker != "" && c.TopicCommand == "" {
		return fmt.Errorf("TOPIC_COMMAND is required when MQTT_BROKER is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
