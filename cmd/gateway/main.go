package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"telcobridge.dev/gateway/common/logger"
	"telcobridge.dev/gateway/common/otel"
	"telcobridge.dev/gateway/core/config"
	"telcobridge.dev/gateway/internal/http/middleware"
	httprouter "telcobridge.dev/gateway/internal/http/router"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/notify"
	"telcobridge.dev/gateway/internal/otp"
	"telcobridge.dev/gateway/internal/sms"
	"telcobridge.dev/gateway/internal/store"
	"telcobridge.dev/gateway/internal/subscription"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Logger is not set up yet at this point
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "gateway starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected")

	nefClient := nef.NewClient(cfg.NEF)
	kv := store.NewRedisKV(redisClient)

	geofencing := subscription.NewGeofencing(
		store.New[model.GeofencingDetail](kv, "geofencing"),
		nefClient,
		notify.New(cfg.Sources.Geofencing),
		cfg.NEF.NotificationURL,
	)
	roaming := subscription.NewRoaming(
		store.New[model.DeviceDetail](kv, "roaming_status"),
		nefClient,
		notify.New(cfg.Sources.Roaming),
		cfg.NEF.NotificationURL,
	)
	reachability := subscription.NewReachability(
		store.New[model.DeviceDetail](kv, "reachability_status"),
		nefClient,
		notify.New(cfg.Sources.Reachability),
		cfg.NEF.NotificationURL,
	)

	sweeper, err := subscription.NewSweeper(cfg.Sweep.Interval,
		subscription.SweepTarget{Domain: "geofencing", Sweep: geofencing.Sweep},
		subscription.SweepTarget{Domain: "roaming-status", Sweep: roaming.Sweep},
		subscription.SweepTarget{Domain: "reachability-status", Sweep: reachability.Sweep},
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up sweeper", "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	slog.InfoContext(ctx, "expiry sweeper started", "interval", cfg.Sweep.Interval)

	var otpStore otp.Store
	if cfg.IsDevelopment() {
		otpStore = otp.NewMemoryStore()
	} else {
		otpStore = otp.NewRedisStore(redisClient)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, httprouter.Dependencies{
		Geofencing:   geofencing,
		Roaming:      roaming,
		Reachability: reachability,
		OTPStore:     otpStore,
		SMSSender:    sms.NewSender(cfg.SMS),
		Cleaner:      nefClient,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}
	if err := sweeper.Shutdown(); err != nil {
		slog.ErrorContext(shutdownCtx, "sweeper shutdown error", "error", err)
	}
	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, deps httprouter.Dependencies) *gin.Engine {
	router := gin.New()

	// OTel first so Recovery and Logger run inside the request span
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Correlator())

	httprouter.SetupRoutes(router, deps, cfg)

	return router
}
