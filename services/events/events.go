// Package events publishes room lifecycle events for operational consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Wordspy/utils/logger"

	"github.com/segmentio/kafka-go"
)

const (
	RoomCreated   = "room_created"
	RoomDestroyed = "room_destroyed"
)

type RoomEvent struct {
	Type   string    `json:"type"`
	RoomID string    `json:"roomId"`
	Mode   string    `json:"gameMode"`
	Host   string    `json:"host,omitempty"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev RoomEvent) error
	Close() error
}

// KafkaPublisher writes every event to one topic, keyed by room id so the
// events of a room stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			BatchSize:    1,
			Completion: func(msgs []kafka.Message, err error) {
				if err != nil {
					logger.Warningf("[EVENTS-ERROR] Failed to deliver %d room events: %v", len(msgs), err)
				}
			},
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev RoomEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("error publishing %s for room %s: %w", ev.Type, ev.RoomID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(ev RoomEvent) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("error encoding room event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.RoomID),
		Value: value,
		Time:  ev.At,
	}, nil
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, RoomEvent) error { return nil }
func (Noop) Close() error                             { return nil }
