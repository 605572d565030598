package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/microcosm-cc/bluemonday"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"github.com/muhammadolammi/resumeoptimizer/internal/logger"
	"github.com/muhammadolammi/resumeoptimizer/internal/metrics"
	"github.com/muhammadolammi/resumeoptimizer/internal/ratelimit"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("error loading config: ", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("error building logger: ", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		zapLogger.Fatal("error opening db", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		zapLogger.Fatal("error connecting to db", zap.Error(err))
	}
	if err := database.Migrate(ctx, db); err != nil {
		zapLogger.Fatal("error running migrations", zap.Error(err))
	}

	optimizer, err := NewAgentOptimizer(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	if err != nil {
		zapLogger.Fatal("failed to create agent", zap.Error(err))
	}

	apiConfig := &ApiConfig{
		DB:                   database.NewStore(db),
		Optimizer:            optimizer,
		Events:               NoopPublisher{},
		Limiter:              ratelimit.NoopLimiter{},
		Metrics:              metrics.New(),
		Logger:               zapLogger,
		Sanitizer:            bluemonday.StrictPolicy(),
		JWTSecret:            []byte(cfg.JWTSecret),
		SessionTTL:           cfg.SessionTTL,
		VerificationTokenTTL: cfg.VerificationTokenTTL,
		MaxUploadBytes:       cfg.MaxUploadBytes,
		AppURL:               cfg.AppURL,
		ContactInbox:         cfg.ContactInbox,
		SecureCookies:        cfg.SecureCookies(),
	}

	if cfg.R2Enabled() {
		storage, err := NewR2Storage(ctx, cfg.R2)
		if err != nil {
			zapLogger.Fatal("error creating r2 storage", zap.Error(err))
		}
		apiConfig.Storage = storage
	} else {
		zapLogger.Warn("r2 not configured, uploads keep extracted text only")
	}

	var sender Mailer = NewLogMailer(zapLogger)
	if cfg.SMTPEnabled() {
		sender = NewSMTPMailer(cfg.SMTP)
	}
	apiConfig.Mailer = sender

	if cfg.AMQPEnabled() {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			zapLogger.Fatal("error connecting to rabbitmq", zap.Error(err))
		}
		defer conn.Close()

		apiConfig.Mailer = NewQueueMailer(conn)
		apiConfig.Events = NewAMQPPublisher(conn)
		go StartMailWorkerPool(conn, sender, zapLogger, cfg.MailWorkers)
	}

	if cfg.RedisEnabled() {
		client, err := ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("error creating redis client", zap.Error(err))
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("redis unreachable, rate limits fail open until it returns", zap.Error(err))
		}
		apiConfig.Limiter = ratelimit.NewRedisLimiter(client, "ratelimit:")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiConfig.Router(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
