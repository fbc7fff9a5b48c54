package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksb/portal/libs/components/workflow"
	"github.com/ksb/portal/libs/shared/config"
	"github.com/ksb/portal/libs/shared/logging"
	"github.com/ksb/portal/libs/shared/mq"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, "workflow-audit")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := workflow.NewAuditWorker(logger)
	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		ClientID: fmt.Sprintf("%s-audit", cfg.ServiceName),
	}, worker.HandleMessage)
	if err != nil {
		logger.Error("failed to create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	logger.Info("template audit consuming", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("template audit stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("template audit stopped")
}
