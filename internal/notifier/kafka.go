package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// AlertEventType is the event_type of every published alert.
const AlertEventType = "CROSSOVER_ALERT"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes alert events keyed by instrument.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

// NewKafkaNotifier creates a notifier writing to topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaNotifier{writer: writer, topic: topic}
}

// alertEvent is the wire format consumed downstream.
type alertEvent struct {
	EventType      string    `json:"event_type"`
	ID             string    `json:"id"`
	Instrument     string    `json:"instrument"`
	Direction      string    `json:"direction"`
	Close          float64   `json:"close"`
	Message        string    `json:"message"`
	Trigger        string    `json:"trigger"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

func encodeAlertEvent(a model.Alert) ([]byte, error) {
	return json.Marshal(alertEvent{
		EventType:      AlertEventType,
		ID:             a.ID,
		Instrument:     a.Instrument,
		Direction:      a.Direction.String(),
		Close:          a.Close,
		Message:        a.Message,
		Trigger:        string(a.Trigger),
		ElapsedSeconds: a.Elapsed.Seconds(),
		Timestamp:      a.FiredAt.UTC(),
	})
}

func (k *KafkaNotifier) Name() string { return "kafka" }

func (k *KafkaNotifier) Send(ctx context.Context, alert model.Alert) error {
	data, err := encodeAlertEvent(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(alert.Instrument),
		Value: data,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes the Kafka writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
