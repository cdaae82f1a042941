package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"meetingscheduler/config"
	"meetingscheduler/internal/adapters/auth"
	"meetingscheduler/internal/adapters/email"
	"meetingscheduler/internal/adapters/queue"
	"meetingscheduler/internal/adapters/ratelimit"
	delivery "meetingscheduler/internal/delivery/http"
	"meetingscheduler/internal/delivery/http/controllers"
	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/repository/memory"
	"meetingscheduler/internal/repository/postgres"
	"meetingscheduler/internal/services"
)

// @title Meeting Scheduler API
// @version 1.0
// @description Speaker availability, slot generation and 1:1 meeting booking for conference attendees.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

type repositories struct {
	availability domain.AvailabilityRepository
	slots        domain.SlotRepository
	meetings     domain.MeetingRequestRepository
	tickets      domain.TicketRepository
	users        domain.UserRepository
}

// redisPinger adapts a redis client to controllers.Pinger.
type redisPinger struct{ client *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.client.Ping(ctx).Err() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	health := map[string]controllers.Pinger{}
	var repos repositories
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{store.Availability(), store.Slots(), store.MeetingRequests(), store.Tickets(), store.Users()}
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Info("database connected")
		health["postgres"] = db
		repos = repositories{
			availability: postgres.NewAvailabilityRepository(db),
			slots:        postgres.NewSlotRepository(db),
			meetings:     postgres.NewMeetingRequestRepository(db),
			tickets:      postgres.NewTicketRepository(db),
			users:        postgres.NewUserRepository(db),
		}
	}

	var redisClient *redis.Client
	if cfg.RateLimiter == config.RateLimiterRedis {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		health["redis"] = redisPinger{redisClient}
	}

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer closeNotifier()
	dispatcher := services.NewNotificationDispatcher(logger, notifier, repos.users, cfg.NotifyTimeout)

	availabilitySvc := services.NewAvailabilityService(repos.availability, cfg.EventLocation, cfg.SlotMinutes)
	slotSvc := services.NewSlotService(logger, availabilitySvc, repos.slots, cfg.EventLocation)
	meetingSvc := services.NewMeetingService(logger, repos.meetings, repos.tickets, cfg.QuotaTiers, cfg.MeetingBounds(), dispatcher)

	deps := delivery.RouterDeps{
		Logger:       logger,
		Verifier:     auth.NewJWTVerifier(cfg.JWTSecret),
		CORSOrigins:  cfg.CORSOrigins,
		Health:       controllers.NewHealthController(logger, health),
		Availability: controllers.NewAvailabilityController(logger, availabilitySvc),
		Slots:        controllers.NewSlotController(logger, slotSvc),
		Meetings:     controllers.NewMeetingController(logger, meetingSvc),
	}
	if redisClient != nil {
		deps.Limiter = ratelimit.NewRedisLimiter(redisClient, "meetings", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "storage", cfg.Storage, "notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	// In-flight notifications finish after the last request has been served.
	dispatcher.Close()
	logger.Info("shutdown complete")
}

// newNotifier builds the notifier selected by NOTIFIER and a func releasing its resources.
func newNotifier(cfg *config.Config, logger *slog.Logger) (domain.Notifier, func()) {
	switch cfg.Notifier {
	case config.NotifierAsynq:
		opt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		client := asynq.NewClient(opt)
		return queue.NewNotifier(logger, client), func() {
			if err := client.Close(); err != nil {
				logger.Error("closing asynq client", "err", err)
			}
		}
	case config.NotifierEmail:
		mailer, err := email.NewMailer(logger, mailerConfig(cfg))
		if err != nil {
			log.Fatalf("Failed to create mailer: %v", err)
		}
		renderer, err := email.NewTemplateRenderer()
		if err != nil {
			log.Fatalf("Failed to load email templates: %v", err)
		}
		return services.NewEmailService(logger, mailer, renderer), func() {}
	default:
		return queue.NewLogNotifier(logger), func() {}
	}
}

func mailerConfig(cfg *config.Config) email.MailerConfig {
	return email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}
}
