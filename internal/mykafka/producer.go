package mykafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicUsers    = "user_events"
	TopicProducts = "product_events"
	TopicCarts    = "cart_events"
	TopicOrders   = "order_events"

	writeTimeout = 5 * time.Second
)

// Publisher sends domain events. Publishing is best effort: callers log
// failures and never roll back the store over them.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
	Close() error
}

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func NewEvent(typ string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Producer struct {
	writer *kafka.Writer
	prefix string
}

func NewProducer(brokers []string, topicPrefix string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           writeTimeout,
		},
		prefix: topicPrefix,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.prefix + topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }
func (Nop) Close() error                                         { return nil }

// New returns a Producer when brokers are configured and Nop otherwise.
func New(brokers []string, topicPrefix string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewProducer(brokers, topicPrefix)
}
