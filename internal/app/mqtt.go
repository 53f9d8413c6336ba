// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// publishTimeout bounds how long a publish may wait for the broker.
const publishTimeout = 2 * time.Second

// connectMQTT connects to the broker and waits for the result.
func connectMQTT(broker, clientID string, logger *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, token.Error())
	}
	logger.Info("connected to MQTT broker", "broker", broker, "client_id", clientID)
	return client, nil
}

// subscribe subscribes and waits for the broker to acknowledge.
func subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler, logger *slog.Logger) error {
	token := client.Subscribe(topic, 0, handler)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	logger.Info("subscribed", "topic", topic)
	return nil
}

// Topics maps daemon events to MQTT topics.
type Topics struct {
	Step     string
	Settings string
	Command  string
	Status   string
	Cycle    string
}

// TopicsFromConfig picks the topic names out of cfg.
func TopicsFromConfig(cfg *config.Config) Topics {
	return Topics{
		Step:     cfg.TopicStep,
		Settings: cfg.TopicSettings,
		Command:  cfg.TopicCommand,
		Status:   cfg.TopicStatus,
		Cycle:    cfg.TopicCycle,
	}
}

// mqttMessage is the topic, payload and retain flag for one event.
type mqttMessage struct {
	topic    string
	payload  []byte
	retained bool
}

// encodeMQTT renders ev for the broker. ok is false for events that have no
// topic configured.
//
//	step     -> Topics.Step      "STEP:<n>"   retained
//	settings -> Topics.Settings  JSON         retained
//	status   -> Topics.Status    text
//	cycle    -> Topics.Cycle     JSON
func encodeMQTT(t Topics, ev Event) (msg mqttMessage, ok bool, err error) {
	switch ev.Type {
	case EventStep:
		step, isInt := ev.Data.(int)
		if !isInt {
			return msg, false, fmt.Errorf("step event carries %T", ev.Data)
		}
		msg = mqttMessage{topic: t.Step, payload: []byte(knob.FormatStep(step)), retained: true}
	case EventSettings:
		b, err := json.Marshal(ev.Data)
		if err != nil {
			return msg, false, fmt.Errorf("marshal settings: %w", err)
		}
		msg = mqttMessage{topic: t.Settings, payload: b, retained: true}
	case EventStatus:
		msg = mqttMessage{topic: t.Status, payload: []byte(fmt.Sprint(ev.Data))}
	case EventCycle:
		b, err := json.Marshal(ev.Data)
		if err != nil {
			return msg, false, fmt.Errorf("marshal cycle: %w", err)
		}
		msg = mqttMessage{topic: t.Cycle, payload: b}
	default:
		return msg, false, nil
	}
	return msg, msg.topic != "", nil
}

// MQTTPublisher publishes daemon events to the broker.
type MQTTPublisher struct {
	client mqtt.Client
	topics Topics
}

func NewMQTTPublisher(client mqtt.Client, topics Topics) *MQTTPublisher {
	return &MQTTPublisher{client: client, topics: topics}
}

func (p *MQTTPublisher) Publish(ev Event) error {
	msg, ok, err := encodeMQTT(p.topics, ev)
	if err != nil || !ok {
		return err
	}
	token := p.client.Publish(msg.topic, 0, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timed out", msg.topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, token.Error())
	}
	return nil
}

// subscribeCommands routes op envelopes from the command topic to d.
func subscribeCommands(client mqtt.Client, topic string, d *Daemon, logger *slog.Logger) error {
	return subscribe(client, topic, func(_ mqtt.Client, msg mqtt.Message) {
		// The reply goes out on the status topic through the daemon publisher.
		_, _ = d.HandleCommand(msg.Payload())
	}, logger)
}
