package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	"github.com/dealsense/icp-engine/pkg/errors"
)

var (
	// ErrAlreadyRunning is returned by Start on a running consumer.
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// Handler processes one decoded event.  A non-nil error triggers retries and
// eventually the dead-letter topic; the offset is committed either way so a
// poison message cannot wedge the group.
type Handler func(ctx context.Context, env *EventEnvelope) error

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	Topics          []string      `mapstructure:"topics"`
	SessionTimeout  time.Duration `mapstructure:"session_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
}

// readerInterface abstracts kafka.Reader for testing.
type readerInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer fetches run-trigger events and dispatches them to per-topic
// handlers.
type Consumer struct {
	reader     readerInterface
	cfg        ConsumerConfig
	logger     logging.Logger
	deadLetter *Producer

	handlers map[string]Handler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewConsumer creates a consumer group reader over the configured topics.
func NewConsumer(cfg ConsumerConfig, deadLetter *Producer, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka group id not configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka topics not configured")
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 2 * time.Second
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		SessionTimeout: cfg.SessionTimeout,
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{
		reader:     reader,
		cfg:        cfg,
		logger:     logger,
		deadLetter: deadLetter,
		handlers:   make(map[string]Handler),
	}, nil
}

// NewConsumerWithReader wraps an existing reader, used by tests.
func NewConsumerWithReader(reader readerInterface, cfg ConsumerConfig, deadLetter *Producer, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		cfg:        cfg,
		logger:     logger,
		deadLetter: deadLetter,
		handlers:   make(map[string]Handler),
	}
}

// Subscribe registers the handler for a topic.
func (c *Consumer) Subscribe(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)
	c.logger.Info("kafka consumer started", logging.String("group", c.cfg.GroupID))
	return nil
}

// Stop cancels the loop and closes the reader.
func (c *Consumer) Stop() error {
	if !c.running.Swap(false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	return c.reader.Close()
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.handleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.mu.RLock()
	handler, ok := c.handlers[msg.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("no handler for topic", logging.String("topic", msg.Topic))
		return
	}

	env, err := DecodeEnvelope(msg.Value)
	if err != nil {
		c.logger.Error("undecodable message, sending to dead letter",
			logging.String("topic", msg.Topic), logging.Err(err))
		c.sendToDeadLetter(ctx, msg)
		return
	}

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.RetryBackoff):
			}
		}
		if err = handler(ctx, env); err == nil {
			return
		}
		c.logger.Warn("handler failed",
			logging.String("topic", msg.Topic),
			logging.String("event_id", env.EventID),
			logging.Int("attempt", attempt+1),
			logging.Err(err))
	}

	c.logger.Error("handler exhausted retries, sending to dead letter",
		logging.String("topic", msg.Topic),
		logging.String("event_id", env.EventID),
		logging.Err(err))
	c.sendToDeadLetter(ctx, msg)
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg kafka.Message) {
	if c.deadLetter == nil || c.cfg.DeadLetterTopic == "" {
		return
	}
	err := c.deadLetter.writer.WriteMessages(ctx, kafka.Message{
		Topic: c.cfg.DeadLetterTopic,
		Key:   msg.Key,
		Value: msg.Value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "origin-topic", Value: []byte(msg.Topic)},
		},
	})
	if err != nil {
		c.logger.Error("dead letter publish failed",
			logging.String("topic", msg.Topic), logging.Err(err))
	}
}

//Personal.AI order the ending
