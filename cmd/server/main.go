package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"certifier/internal/app"
	"certifier/internal/certificate/callback"
	"certifier/internal/certificate/handler"
	jwttoken "certifier/internal/jwt_token"
	"certifier/internal/platform/config"
	"certifier/internal/platform/kafka/consumer"
	"certifier/internal/platform/logger"
	httptransport "certifier/internal/transport/http"
	"certifier/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing certifier",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"credential_base_url", cfg.Credential.BaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.Build(ctx, cfg, log, reg)
	if err != nil {
		log.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close connections", "error", err)
		}
	}()

	signingKey := cfg.JWTSigningKey
	if signingKey == "" {
		log.Warn("JWT_SIGNING_KEY not set, using the development signing key")
		signingKey = jwttoken.DevSigningKey
	}
	if cfg.CallbackTokenHash == "" {
		log.Warn("CALLBACK_TOKEN_HASH not set, /update_certificate is unauthenticated")
	}
	jwtService := jwttoken.NewJWTService(signingKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience, jwttoken.DefaultTokenTTL)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Certificates:      handler.New(a.Service, a.Reconciler, log),
		Health:            a.Health,
		Validator:         jwttoken.NewJWTServiceAdapter(jwtService),
		CallbackTokenHash: cfg.CallbackTokenHash,
		Gatherer:          reg,
		RequestMetrics:    request.NewMetrics(reg),
		Logger:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Kafka.Enabled() && cfg.Kafka.CallbackTopic != "" {
		c, err := consumer.New(consumer.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topics:  []string{cfg.Kafka.CallbackTopic},
		}, callback.NewMessageHandler(a.Reconciler, log), log)
		if err != nil {
			log.Error("failed to create callback consumer", "error", err)
			os.Exit(1)
		}
		a.Health.RegisterCheck("kafka_consumer", c.Ping)
		g.Go(func() error {
			c.Start(gctx)
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return c.Stop(stopCtx)
		})
	}

	g.Go(func() error {
		a.ReportRedisPoolStats(gctx, poolStatsInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
