package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/interfaces"
)

// Config selects the brokers and topic events are written to.
type Config struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// batchTimeout bounds how long a write waits for more messages to fill its
// batch. Publish sends one message per call, so the 1s default would be
// added to every deposit.
const batchTimeout = 5 * time.Millisecond

// Publisher writes JSON encoded events to a single Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a publisher for cfg. Connections are opened lazily on
// the first write.
func NewPublisher(cfg Config) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:  kafka.TCP(cfg.Brokers...),
			Topic: cfg.Topic,
			// hashing on the key keeps one account's events on one partition, in order
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: cfg.WriteTimeout,
			BatchTimeout: batchTimeout,
		},
	}
}

// Publish writes event under key and waits for the brokers to acknowledge it.
func (p *Publisher) Publish(ctx context.Context, key string, event any) error {
	msg, err := newMessage(key, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close flushes pending writes and releases the connections.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: data,
	}, nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
