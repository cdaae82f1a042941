package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/hibiken/asynq"

	"meetingscheduler/config"
	"meetingscheduler/internal/adapters/email"
	"meetingscheduler/internal/adapters/queue"
	"meetingscheduler/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	mailer, err := email.NewMailer(logger, email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}
	emailSvc := services.NewEmailService(logger, mailer, renderer)

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{queue.QueueNotifications: 1},
		Logger:      newAsynqLogger(logger),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.ErrorContext(ctx, "notification task failed",
				"type", task.Type(), "retry", retried, "max_retry", maxRetry, "err", err)
		}),
	})

	logger.Info("worker starting", "queue", queue.QueueNotifications, "concurrency", cfg.WorkerConcurrency, "email_provider", cfg.EmailProvider)
	// Run blocks until SIGTERM or SIGINT, then waits for in-flight tasks.
	if err := srv.Run(queue.NewServeMux(queue.NewMeetingStatusHandler(logger, emailSvc))); err != nil {
		log.Fatalf("Worker stopped: %v", err)
	}
}
