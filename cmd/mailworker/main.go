// mailworker drains the notification queue and delivers mail over SMTP.
// It runs as a separate process so mail server latency never touches the API.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/adapters/mailqueue"
	"github.com/ghumakkad/trip-share-api/internal/adapters/smtpmail"
	"github.com/ghumakkad/trip-share-api/internal/platform/config"
	"github.com/ghumakkad/trip-share-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required for the mail worker")
	}
	if cfg.SMTPHost == "" {
		log.Fatal("SMTP_HOST is required for the mail worker")
	}

	zlog := logger.New(cfg.Environment)
	defer func() { _ = zlog.Sync() }()

	sender := smtpmail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	consumer, err := mailqueue.NewConsumer(cfg.RabbitMQURL, cfg.MailExchange, cfg.MailQueue, zlog)
	if err != nil {
		zlog.Fatal("rabbitmq connect failed", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Info("mail worker consuming", zap.String("queue", cfg.MailQueue))
	err = consumer.Run(ctx, func(ctx context.Context, m mailqueue.Message) error {
		if err := sender.Send(ctx, m.Email, m.Subject, m.Body); err != nil {
			return err
		}
		zlog.Info("mail delivered", zap.String("email", m.Email), zap.String("subject", m.Subject))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("consumer stopped", zap.Error(err))
	}
	zlog.Info("mail worker shut down")
}
