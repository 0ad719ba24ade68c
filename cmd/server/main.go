// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "founders-circle/internal/api/http"
	"founders-circle/internal/cache"
	awsclients "founders-circle/internal/common/aws"
	"founders-circle/internal/common/config"
	"founders-circle/internal/common/database"
	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/observability"
	"founders-circle/internal/events"
	"founders-circle/internal/mail"
	"founders-circle/internal/notification"
	"founders-circle/internal/storage"
	"founders-circle/internal/templates"
	"founders-circle/internal/tracking"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting founders circle backend...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx := context.Background()

	obs := observability.New(cfg.App.Name, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	// --- Storage tier selection ---
	var closers []func() error
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	postgresCandidate := func(name string, pgCfg config.PostgresConfig, tier storage.Tier) storage.Candidate {
		if !pgCfg.Enabled() {
			return storage.Candidate{Tier: tier}
		}
		return storage.Candidate{
			Tier: tier,
			Open: func(ctx context.Context) (storage.Provider, error) {
				var pg *database.PostgresClient
				err := retryWithBackoff(func() error {
					var err error
					if pg == nil {
						pg, err = database.NewPostgres(pgCfg)
						if err != nil {
							return err
						}
					}
					return pg.Ping(ctx)
				}, cfg.Database.ConnectRetries, time.Second, log, name+" PostgreSQL connection")
				if err != nil {
					if pg != nil {
						pg.Close()
					}
					return nil, err
				}
				closers = append(closers, pg.Close)
				return storage.NewPostgresStore(pg.DB, tier), nil
			},
		}
	}

	gateway, err := storage.Select(ctx, log,
		postgresCandidate("privileged", cfg.Database.Privileged, storage.TierPrivileged),
		postgresCandidate("restricted", cfg.Database.Restricted, storage.TierRestricted),
		storage.Candidate{
			Tier: storage.TierFile,
			Open: func(context.Context) (storage.Provider, error) {
				return storage.NewFileStore(cfg.Storage.DataDir)
			},
		},
	)
	if err != nil {
		zapLog.Fatal("no storage available", zap.Error(err))
	}

	// --- Optional Redis cache ---
	var appCache *cache.Cache
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(cfg.Redis)
		if err == nil {
			err = rdb.Ping(ctx)
		}
		if err != nil {
			log.Warn("redis unavailable, cache disabled", map[string]interface{}{"error": err})
		} else {
			closers = append(closers, rdb.Close)
			appCache = cache.New(rdb.Client, config.GetDuration(cfg.Redis.CacheTTL), log)
			zapLog.Info("Redis cache enabled")
		}
	}

	var templateStore storage.TemplateStore
	if ts, ok := gateway.Templates(); ok {
		templateStore = ts
		if appCache != nil {
			templateStore = appCache.Templates(ts)
		}
	}
	var catalogStore storage.CatalogStore
	if cs, ok := gateway.Catalog(); ok {
		catalogStore = cs
		if appCache != nil {
			catalogStore = appCache.Catalog(cs)
		}
	}

	// --- Optional Elasticsearch mirror for tracking ---
	var mirror tracking.Mirror
	if cfg.Elasticsearch.Enabled() {
		esClient, err := database.NewElasticsearch(cfg.Elasticsearch)
		if err == nil {
			err = esClient.Ping(ctx)
		}
		if err != nil {
			log.Warn("elasticsearch unavailable, tracking mirror disabled", map[string]interface{}{"error": err})
		} else {
			mirror = tracking.NewESMirror(esClient.Client, esClient.Index)
			zapLog.Info("Elasticsearch tracking mirror enabled", zap.String("index", esClient.Index))
		}
	}

	recorder, err := tracking.NewRecorder(cfg.Storage.DataDir, mirror, log)
	if err != nil {
		zapLog.Fatal("tracking init failed", zap.Error(err))
	}

	// --- Optional SNS domain events ---
	var publisher events.Publisher = events.Noop{}
	if cfg.AWS.SNS.TopicARN != "" {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			log.Warn("sns unavailable, domain events disabled", map[string]interface{}{"error": err})
		} else {
			publisher = events.NewSNSPublisher(snsClient, cfg.AWS.SNS.TopicARN, log)
		}
	}

	// --- Notifications ---
	sender, err := mail.New(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("mail transport init failed", zap.Error(err))
	}
	renderer, err := templates.New()
	if err != nil {
		zapLog.Fatal("template init failed", zap.Error(err))
	}
	dispatcher := notification.NewDispatcher(renderer, sender, gateway, notification.Config{
		AdminEmail:  cfg.Mail.AdminEmail,
		SendTimeout: config.GetDuration(cfg.Mail.Timeout),
	}, log, obs)

	if cfg.Mail.AdminEmail == "" {
		log.Warn("mail.admin_email not set; admin notifications will fail", nil)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Store:        gateway,
		Templates:    templateStore,
		Catalog:      catalogStore,
		Notifier:     dispatcher,
		Tracker:      recorder,
		Events:       publisher,
		AdminToken:   cfg.Server.AdminToken,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Version:      cfg.App.Version,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("storageTier", string(gateway.Tier())),
			zap.Bool("mailConfigured", dispatcher.MailConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
