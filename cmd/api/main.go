package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/netpulse/netpulse/internal/archive"
	"github.com/netpulse/netpulse/internal/archive/postgres"
	"github.com/netpulse/netpulse/internal/config"
	"github.com/netpulse/netpulse/internal/engine"
	"github.com/netpulse/netpulse/internal/httpapi"
	apimw "github.com/netpulse/netpulse/internal/httpapi/middleware"
	"github.com/netpulse/netpulse/internal/logging"
	"github.com/netpulse/netpulse/internal/notify"
	"github.com/netpulse/netpulse/internal/probe"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var arch archive.Writer = archive.Nop{}
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Fatal("archive_connect_error", zap.Error(err))
		}
		arch = pg
		logger.Info("archive_enabled")
	}

	var alerter *notify.Alerter
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		alerter = notify.NewAlerter(notify.Multi{slack}, notify.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
		})
		logger.Info("alerts_enabled")
	}

	eng := engine.New(logger, probe.NewDispatcher(), engine.Config{
		Workers:         cfg.Workers,
		JitterFrac:      cfg.JitterFrac,
		HistoryCapacity: cfg.HistoryCapacity,
		Archive:         arch,
		Alerter:         alerter,
	})
	eng.Start()

	api := httpapi.NewServer(logger, eng, cfg.DefaultInterval)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(keys, cfg.RateRPM, cfg.RateBurst),
	}

	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_serve_error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown_signal")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	if err := eng.Shutdown(ctx); err != nil {
		logger.Warn("engine_shutdown_error", zap.Error(err))
	}
}
