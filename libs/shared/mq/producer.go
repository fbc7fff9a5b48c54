package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// HeaderContentType names the header carrying the payload encoding.
const HeaderContentType = "content-type"

// Producer wraps a Kafka writer.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer constructs a Kafka producer using the provided configuration.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	n := cfg.normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(n.Brokers...),
		Topic:                  n.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           n.Timeout,
		BatchSize:              n.BatchSize,
	}
	if n.ClientID != "" {
		writer.Transport = &kafka.Transport{ClientID: n.ClientID}
	}

	slog.Info("mq: producer initialized", "config", n.String())
	return &Producer{writer: writer, topic: n.Topic}, nil
}

// Topic returns the topic messages are written to.
func (p *Producer) Topic() string {
	if p == nil {
		return ""
	}
	return p.topic
}

// Publish sends a keyed message with headers.
func (p *Producer) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	if p == nil || p.writer == nil {
		return nil
	}

	return p.writer.WriteMessages(ctx, toKafka(key, value, headers))
}

// PublishJSON encodes v as JSON and publishes it under key. The
// content-type header defaults to application/json.
func (p *Producer) PublishJSON(ctx context.Context, key string, v any, headers map[string]string) error {
	if p == nil || p.writer == nil {
		return nil
	}

	msg, err := jsonMessage(key, v, headers)
	if err != nil {
		return fmt.Errorf("mq: encode message for %s: %w", p.topic, err)
	}
	return p.writer.WriteMessages(ctx, msg)
}

func jsonMessage(key string, v any, headers map[string]string) (kafka.Message, error) {
	value, err := json.Marshal(v)
	if err != nil {
		return kafka.Message{}, err
	}
	msg := toKafka(key, value, headers)
	if _, ok := headers[HeaderContentType]; !ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: HeaderContentType, Value: []byte("application/json")})
	}
	return msg, nil
}

func toKafka(key string, value []byte, headers map[string]string) kafka.Message {
	msg := kafka.Message{Key: []byte(key), Value: value}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return msg
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
