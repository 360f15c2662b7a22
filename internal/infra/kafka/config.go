package kafka

import (
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type Config struct {
	Brokers  []string
	Topic    string
	GroupID  string
	ClientID string
	Protocol string
}

func (c Config) baseConfigMap() (*kafka.ConfigMap, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if strings.TrimSpace(c.Topic) == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	protocol := c.Protocol
	if protocol == "" {
		protocol = "plaintext"
	}

	cm := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(c.Brokers, ","),
		"security.protocol": protocol,
	}
	if c.ClientID != "" {
		_ = cm.SetKey("client.id", c.ClientID)
	}
	return cm, nil
}
