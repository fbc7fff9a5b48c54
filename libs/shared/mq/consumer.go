package mq

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is a Kafka message delivered to a Handler.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// Handler processes one consumed message.
type Handler func(context.Context, Message) error

// Consumer wraps a group reader and invokes a handler for each message.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
}

// NewConsumer constructs a group consumer.
func NewConsumer(cfg ConsumerConfig, handler Handler) (*Consumer, error) {
	n := cfg.normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.New("mq: handler must be provided")
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:  n.Brokers,
		Topic:    n.Topic,
		GroupID:  n.GroupID,
		MinBytes: n.MinBytes,
		MaxBytes: n.MaxBytes,
	}
	if n.ClientID != "" {
		readerCfg.Dialer = &kafka.Dialer{ClientID: n.ClientID, Timeout: 10 * time.Second}
	}

	slog.Info("mq: consumer initialized", "config", n.String())
	return &Consumer{reader: kafka.NewReader(readerCfg), handler: handler}, nil
}

// Run consumes until ctx is cancelled. Handler errors are logged and the
// message is still committed; there is no redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil || c.reader == nil {
		return nil
	}

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if err := c.handler(ctx, fromKafka(msg)); err != nil {
			slog.Warn("mq: handler failed", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

// Close shuts down the reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func fromKafka(msg kafka.Message) Message {
	out := Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: make(map[string]string, len(msg.Headers)),
		Time:    msg.Time,
	}
	for _, h := range msg.Headers {
		out.Headers[h.Key] = string(h.Value)
	}
	return out
}
