package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksb/portal/libs/components/directory"
	"github.com/ksb/portal/libs/components/workflow"
	"github.com/ksb/portal/libs/shared/config"
	"github.com/ksb/portal/libs/shared/database"
	"github.com/ksb/portal/libs/shared/httpx"
	"github.com/ksb/portal/libs/shared/logging"
	"github.com/ksb/portal/libs/shared/mq"
	"github.com/ksb/portal/libs/shared/observability"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, "workflow")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("workflow service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	db, err := database.ConnectWithDSN("workflow", cfg.DatabaseDSN("workflow"))
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&workflow.Template{}, &directory.Department{}, &directory.License{}); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	producer, err := mq.NewProducer(mq.ProducerConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		ClientID: cfg.ServiceName,
	})
	if err != nil {
		logger.Warn("template events disabled", "error", err)
	}
	defer producer.Close()

	directoryRepo := directory.NewGormRepository(db)
	opts := []workflow.ServiceOption{
		workflow.WithDirectory(directoryRepo),
		workflow.WithLogger(logging.WithModule("workflow")),
		workflow.WithPublishTimeout(cfg.PublishTimeout),
	}
	if producer != nil {
		opts = append(opts, workflow.WithPublisher(producer))
	}
	svc := workflow.NewService(workflow.NewGormRepository(db), opts...)

	server := httpx.New("workflow")
	observability.RegisterMetricsEndpoint(server.Router)
	workflow.NewHandler(svc).Mount(server.Router, "/workflow-templates")
	directory.NewHandler(directoryRepo).Mount(server.Router)

	addr := fmt.Sprintf(":%s", cfg.ResolveHTTPPort("workflow", "8084"))
	errCh := make(chan error, 1)
	go func() {
		logger.Info("workflow service listening", "addr", addr)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("workflow service shutting down")
	return server.Shutdown(context.Background(), cfg.ShutdownTimeout)
}
