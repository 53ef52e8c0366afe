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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/app"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/config"
	authHandler "github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler/auth"
	bedHandler "github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler/bed"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler/events"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler/health"
	patientHandler "github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler/patient"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/middleware"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/router"
	authService "github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/service/auth"
	bedService "github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/service/bed"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/service/notification"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/service/occupancy"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/worker"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/auth"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/logger"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging"
	redisbroker "github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging/redis"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging/sse"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/metrics"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/security"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.Setup(logger.Config{Level: cfg.Log.Level})
	gin.SetMode(gin.ReleaseMode)
	if err := validator.Register(); err != nil {
		lg.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics(cfg.Monitoring.Namespace, prometheus.DefaultRegisterer)

	// Initialize record stores
	stores, err := app.OpenStores(ctx, cfg.Database, m, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to open record store")
	}
	defer stores.Close()

	// Change notifications: the local hub always feeds /events. With Redis
	// configured, events go through Redis and are relayed back into the hub
	// so every instance streams every change.
	hub := sse.NewHub(m.StreamSubscribers)
	var broker messaging.Broker = hub
	checks := map[string]health.Pinger{"database": stores}
	if cfg.Redis.URL != "" {
		rb, err := redisbroker.NewRedisBroker(ctx, redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, lg, m)
		if err != nil {
			lg.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rb.Close()
		if err := sse.Relay(ctx, rb, hub, cfg.Redis.Channel, lg); err != nil {
			lg.Fatal().Err(err).Msg("failed to subscribe to event channel")
		}
		broker = rb
		checks["redis"] = rb
	}

	notifier := notification.NewService(messaging.NewChannelPublisher(broker, cfg.Redis.Channel), stores.Beds, lg, m)
	go worker.NewBoardSyncWorker(notifier, cfg.Monitoring.BoardSyncInterval, lg).Start(ctx)

	// Initialize services
	occupancySvc := occupancy.NewService(stores.Beds, stores.Patients, notifier, lg, m)
	bedSvc := bedService.NewService(stores.Beds, notifier, lg)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(stores.Accounts, jwtSvc, security.NewBcryptHasher(security.DefaultCost), lg)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, authSvc)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Security.AllowedOrigins
	}

	healthH := health.NewHandler(checks, prometheus.DefaultGatherer)
	if !cfg.Monitoring.PrometheusEnabled {
		healthH.WithoutMetrics()
	}

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		healthH,
		authHandler.NewHandler(authSvc),
		bedHandler.NewHandler(bedSvc),
		patientHandler.NewHandler(occupancySvc),
		events.NewHandler(hub, cfg.Redis.Channel, lg),
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       cors,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MetricsNamespace: cfg.Monitoring.Namespace,
			Registerer:       prometheus.DefaultRegisterer,
		},
	)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		lg.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down server...")

	// Closing the hub ends open event streams so Shutdown does not wait on them.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("server forced to shutdown")
	}

	notifier.Close()
	lg.Info().Msg("server exited")
}
