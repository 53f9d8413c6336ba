// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// presetFile is the YAML layout of PRESETS_FILE.
//
//	presets:
//	  - name: Coarse
//	    bounded: true
//	    min_angle: 0
//	    max_angle: 3.14159
//	    num_detents: 4
//	    detent_strength: 20
//	    steps_per_revolution: 4
type presetFile struct {
	Presets []knob.Settings `yaml:"presets"`
}

// LoadPresets returns the canonical preset table followed by the presets in
// path. An empty path returns just the canonical table, so indices 0-5 never
// move.
func LoadPresets(path string) ([]knob.Settings, error) {
	table := knob.DefaultPresets()
	if path == "" {
		return table, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var pf presetFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode presets yaml: %w", err)
	}

	for i, p := range pf.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d: name is required", i)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %d (%s): %w", i, p.Name, err)
		}
		table = append(table, p)
	}
	return table, nil
}
