package mq

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProducerConfig describes how to publish to a Kafka topic.
type ProducerConfig struct {
	Brokers   []string
	Topic     string
	ClientID  string
	BatchSize int
	Timeout   time.Duration
}

// ConsumerConfig describes how to consume a Kafka topic as part of a group.
type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	ClientID string
	MinBytes int
	MaxBytes int
}

var (
	errNoBrokers = errors.New("mq: at least one broker must be configured")
	errNoTopic   = errors.New("mq: topic must be provided")
	errNoGroup   = errors.New("mq: group id must be provided")
)

// Validate ensures the producer configuration is usable.
func (cfg ProducerConfig) Validate() error {
	if len(cfg.Brokers) == 0 {
		return errNoBrokers
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return errNoTopic
	}
	return nil
}

// Validate ensures the consumer configuration is usable.
func (cfg ConsumerConfig) Validate() error {
	if len(cfg.Brokers) == 0 {
		return errNoBrokers
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return errNoTopic
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return errNoGroup
	}
	return nil
}

func (cfg ProducerConfig) normalize() ProducerConfig {
	n := cfg
	n.Brokers = normalizeBrokers(cfg.Brokers)
	n.Topic = strings.TrimSpace(cfg.Topic)
	n.ClientID = strings.TrimSpace(cfg.ClientID)
	if n.Timeout <= 0 {
		n.Timeout = 5 * time.Second
	}
	if n.BatchSize <= 0 {
		n.BatchSize = 1
	}
	return n
}

func (cfg ConsumerConfig) normalize() ConsumerConfig {
	n := cfg
	n.Brokers = normalizeBrokers(cfg.Brokers)
	n.Topic = strings.TrimSpace(cfg.Topic)
	n.GroupID = strings.TrimSpace(cfg.GroupID)
	n.ClientID = strings.TrimSpace(cfg.ClientID)
	if n.MinBytes <= 0 {
		n.MinBytes = 1e3
	}
	if n.MaxBytes <= 0 {
		n.MaxBytes = 10e6
	}
	return n
}

func normalizeBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			out = append(out, broker)
		}
	}
	return out
}

// String implements fmt.Stringer.
func (cfg ProducerConfig) String() string {
	n := cfg.normalize()
	return fmt.Sprintf("ProducerConfig{brokers=%s, topic=%s, client=%s}", strings.Join(n.Brokers, ","), n.Topic, n.ClientID)
}

// String implements fmt.Stringer.
func (cfg ConsumerConfig) String() string {
	n := cfg.normalize()
	return fmt.Sprintf("ConsumerConfig{brokers=%s, topic=%s, group=%s, client=%s}", strings.Join(n.Brokers, ","), n.Topic, n.GroupID, n.ClientID)
}
