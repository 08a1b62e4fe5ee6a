package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/config"
	"github.com/hamed0406/sitewatch/internal/httpapi"
	"github.com/hamed0406/sitewatch/internal/logging"
	"github.com/hamed0406/sitewatch/internal/metrics"
	"github.com/hamed0406/sitewatch/internal/notify"
	"github.com/hamed0406/sitewatch/internal/probe"
	"github.com/hamed0406/sitewatch/internal/repo/memory"
	"github.com/hamed0406/sitewatch/internal/scheduler"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := memory.New(cfg.Sites)
	logger.Info("state_seeded", zap.Int("sites", store.Len()), zap.Bool("up", true))
	m := metrics.New()
	alerter := scheduler.NewAlerter(logger, notifiers(cfg, logger), m, cfg.NotifyTimeout)
	mon := scheduler.NewMonitor(logger, cfg.Sites, store, probe.NewHTTPChecker(cfg.ProbeTimeout), alerter, m,
		scheduler.Config{
			Interval:     cfg.Interval(),
			Timeout:      cfg.ProbeTimeout,
			Concurrency:  cfg.MaxConcurrentChecks,
			PrimeOnStart: cfg.PrimeOnStart,
		})

	if cfg.Status.Addr != "" {
		api := httpapi.NewServer(logger, store, m)
		handler := api.Router(httpapi.RouterOptions{
			APIKeys: cfg.Status.APIKeys,
			RPM:     cfg.Status.RPM,
			Burst:   cfg.Status.Burst,
		})
		go httpapi.RunOptional(ctx, logger, cfg.Status.Addr, handler)
	}

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("monitor_exit", zap.Error(err))
	}
}

// notifiers returns every configured channel, or a log-only notifier when
// none is set up.
func notifiers(cfg config.Config, logger *zap.Logger) notify.Notifier {
	var out notify.Multi
	if cfg.Email.Enabled() {
		out = append(out, notify.NewEmail(notify.EmailConfig{
			Sender:   cfg.Email.Sender,
			Receiver: cfg.Email.Receiver,
			Password: cfg.Email.AppPassword,
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
		}))
	}
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		out = append(out, s)
	}
	if len(out) == 0 {
		logger.Warn("no notification channel configured; alerts go to the log only")
		return notify.Log{Logger: logger}
	}
	return out
}
