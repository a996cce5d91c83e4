package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	"github.com/dealsense/icp-engine/pkg/errors"
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes, keyed by workspace so one workspace's
// events stay ordered within a partition.
type Producer struct {
	writer writerInterface
	logger logging.Logger
}

// NewProducer creates a producer over the given brokers.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers not configured")
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	acks := kafka.RequireAll
	if cfg.RequiredAcks == 1 {
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
	}
	return &Producer{writer: writer, logger: logger}, nil
}

// NewProducerWithWriter wraps an existing writer, used by tests.
func NewProducerWithWriter(w writerInterface, logger logging.Logger) *Producer {
	return &Producer{writer: w, logger: logger}
}

// Publish writes one envelope to the topic with the given key.
func (p *Producer) Publish(ctx context.Context, topic, key string, env *EventEnvelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish event")
	}
	p.logger.Debug("published event",
		logging.String("topic", topic),
		logging.String("event_type", env.EventType),
		logging.String("key", key))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

//Personal.AI order the ending
