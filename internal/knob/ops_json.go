// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package knob

import (
	"encoding/json"
	"fmt"
)

// Op type discriminators used on the wire.
const (
	OpTypeSwitchPreset   = "switch_preset"
	OpTypeSetField       = "set_field"
	OpTypeSetBounded     = "set_bounded"
	OpTypeCalibrate      = "calibrate"
	OpTypeReportSettings = "report_settings"
)

// OpEnvelope wraps an op with a type discriminator for JSON.
type OpEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalOp decodes a JSON op envelope into a concrete Op.
func UnmarshalOp(data []byte) (Op, error) {
	var env OpEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case OpTypeSwitchPreset:
		var op SwitchPreset
		if err := unmarshalData(env.Data, &op); err != nil {
			return nil, fmt.Errorf("unmarshal SwitchPreset: %w", err)
		}
		return op, nil

	case OpTypeSetField:
		var op SetField
		if err := unmarshalData(env.Data, &op); err != nil {
			return nil, fmt.Errorf("unmarshal SetField: %w", err)
		}
		if op.Field == "" {
			return nil, fmt.Errorf("unmarshal SetField: missing field name")
		}
		return op, nil

	case OpTypeSetBounded:
		var op SetBounded
		if err := unmarshalData(env.Data, &op); err != nil {
			return nil, fmt.Errorf("unmarshal SetBounded: %w", err)
		}
		return op, nil

	case OpTypeCalibrate:
		return Calibrate{}, nil

	case OpTypeReportSettings:
		return ReportSettings{}, nil

	default:
		return nil, fmt.Errorf("unknown op type: %q", env.Type)
	}
}

// MarshalOp encodes an Op as a JSON envelope.
func MarshalOp(op Op) ([]byte, error) {
	var env OpEnvelope

	switch o := op.(type) {
	case SwitchPreset:
		env.Type = OpTypeSwitchPreset
		data, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("marshal SwitchPreset: %w", err)
		}
		env.Data = data

	case SetField:
		env.Type = OpTypeSetField
		data, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("marshal SetField: %w", err)
		}
		env.Data = data

	case SetBounded:
		env.Type = OpTypeSetBounded
		data, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("marshal SetBounded: %w", err)
		}
		env.Data = data

	case Calibrate:
		env.Type = OpTypeCalibrate

	case ReportSettings:
		env.Type = OpTypeReportSettings

	default:
		return nil, fmt.Errorf("unknown op type: %T", op)
	}

	return json.Marshal(env)
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("missing data")
	}
	return json.Unmarshal(data, v)
}
