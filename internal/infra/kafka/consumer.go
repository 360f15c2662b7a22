package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const (
	pollTimeoutMS = 1000
	retryBackoff  = 2 * time.Second
)

// Handler processes one message. A non-nil error leaves the offset uncommitted
// and the message is consumed again.
type Handler func(ctx context.Context, msg *kafka.Message) error

type Consumer struct {
	consumer *kafka.Consumer
	topic    string
	groupID  string
	logger   *zap.Logger
}

func NewConsumer(cfg Config, logger *zap.Logger) (*Consumer, error) {
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka group id is required")
	}
	cm, err := cfg.baseConfigMap()
	if err != nil {
		return nil, err
	}
	_ = cm.SetKey("group.id", cfg.GroupID)
	_ = cm.SetKey("auto.offset.reset", "earliest")
	_ = cm.SetKey("enable.auto.commit", false)

	c, err := kafka.NewConsumer(cm)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer for group %s: %w", cfg.GroupID, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Consumer{consumer: c, topic: cfg.Topic, groupID: cfg.GroupID, logger: logger}, nil
}

// Run polls until ctx is cancelled or the client reports a fatal error.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	if err := c.consumer.SubscribeTopics([]string{c.topic}, nil); err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.Info("kafka consumer started", zap.String("topic", c.topic), zap.String("group_id", c.groupID))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch e := c.consumer.Poll(pollTimeoutMS).(type) {
		case nil:
		case *kafka.Message:
			if err := handler(ctx, e); err != nil {
				c.logger.Warn("kafka message failed, will retry",
					zap.String("topic", c.topic),
					zap.Int32("partition", e.TopicPartition.Partition),
					zap.String("offset", e.TopicPartition.Offset.String()),
					zap.Error(err),
				)
				if seekErr := c.consumer.Seek(e.TopicPartition, 0); seekErr != nil {
					c.logger.Error("kafka seek failed", zap.Error(seekErr))
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(retryBackoff):
				}
				continue
			}
			if _, err := c.consumer.CommitMessage(e); err != nil {
				c.logger.Error("kafka commit failed",
					zap.String("offset", e.TopicPartition.Offset.String()),
					zap.Error(err),
				)
			}
		case kafka.Error:
			if e.IsFatal() {
				return fmt.Errorf("kafka consumer fatal error: %w", e)
			}
			c.logger.Warn("kafka consumer error", zap.Error(e))
		}
	}
}

func (c *Consumer) Close() {
	if c == nil || c.consumer == nil {
		return
	}
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("close kafka consumer", zap.Error(err))
	}
}
