package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const OrderPlaced = "order.placed"

// Publisher emits domain events after the state change has committed.
type Publisher interface {
	Publish(ctx context.Context, eventType string, key string, payload any) error
}

// LogPublisher only logs events; used when no broker is configured.
type LogPublisher struct{ l *zap.Logger }

func NewLogPublisher(l *zap.Logger) *LogPublisher {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogPublisher{l: l}
}

func (p *LogPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.l.Info("event published",
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.Int("payload_bytes", len(b)),
	)
	return nil
}

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type KafkaPublisher struct {
	writer       *kafka.Writer
	topicByEvent map[string]string
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topicByEvent: topicByEvent,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	topic := p.topicFor(eventType)
	b, err := json.Marshal(envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: b,
		Time:  time.Now().UTC(),
	})
}

// topicFor falls back to the event type itself when no topic is mapped.
func (p *KafkaPublisher) topicFor(eventType string) string {
	if t := p.topicByEvent[eventType]; t != "" {
		return t
	}
	return eventType
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
