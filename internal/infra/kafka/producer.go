package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/domain/model"
)

const flushTimeoutMS = 15 * 1000

type Producer struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

func NewProducer(cfg Config, logger *zap.Logger) (*Producer, error) {
	cm, err := cfg.baseConfigMap()
	if err != nil {
		return nil, err
	}
	_ = cm.SetKey("acks", "all")
	_ = cm.SetKey("enable.idempotence", true)

	p, err := kafka.NewProducer(cm)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Producer{producer: p, topic: cfg.Topic, logger: logger}, nil
}

// Send produces one message and waits for its delivery report.
func (p *Producer) Send(ctx context.Context, key, payload []byte) error {
	deliveryCh := make(chan kafka.Event, 1)

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          payload,
		Timestamp:      time.Now(),
	}
	if err := p.producer.Produce(msg, deliveryCh); err != nil {
		return fmt.Errorf("enqueue kafka message: %w", err)
	}

	select {
	case e := <-deliveryCh:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected kafka delivery event %T", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver kafka message: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait kafka delivery: %w", ctx.Err())
	}
}

// PublishSwipeChanged keys the event by the swiping user so that every change
// for one user lands on the same partition in order.
func (p *Producer) PublishSwipeChanged(ctx context.Context, event model.SwipeChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal swipe changed event: %w", err)
	}
	return p.Send(ctx, []byte(event.UserID), payload)
}

func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	if remaining := p.producer.Flush(flushTimeoutMS); remaining > 0 {
		p.logger.Warn("kafka producer closed with undelivered messages", zap.Int("remaining", remaining))
	}
	p.producer.Close()
}
