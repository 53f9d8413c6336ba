package app

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

func TestFormatConsoleMessage(t *testing.T) {
	topics := Topics{Step: "knob/step", Settings: "knob/settings", Status: "knob/status", Cycle: "knob/cycle"}

	line, err := formatConsoleMessage(topics, "knob/step", []byte("STEP:-4"))
	if err != nil || line != "[STEP]   -4" {
		t.Errorf("step: %q err=%v", line, err)
	}

	line, err = formatConsoleMessage(topics, "knob/status", []byte("Set detent_strength = 7"))
	if err != nil || line != "[STATUS] Set detent_strength = 7" {
		t.Errorf("status: %q err=%v", line, err)
	}

	s := knob.DefaultPresets()[knob.PresetBounded8]
	b, _ := json.Marshal(s)
	line, err = formatConsoleMessage(topics, "knob/settings", b)
	if err != nil || line != strings.TrimRight(knob.FormatSettings(s), "\n") {
		t.Errorf("settings: %q err=%v", line, err)
	}

	b, _ = json.Marshal(knob.CycleResult{Angle: 1.5, Target: 1.5708, Gain: 10, Step: 3})
	line, err = formatConsoleMessage(topics, "knob/cycle", b)
	if err != nil || line != "[CYCLE]  angle=  1.500 target=  1.571 gain= 10.00 step=3" {
		t.Errorf("cycle: %q err=%v", line, err)
	}

	if _, err := formatConsoleMessage(topics, "knob/step", []byte("garbage")); err == nil {
		t.Error("expected error for bad step payload")
	}
	if _, err := formatConsoleMessage(topics, "other/topic", nil); err == nil {
		t.Error("expected error for unknown topic")
	}
}
