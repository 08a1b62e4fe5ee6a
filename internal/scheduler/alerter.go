package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/metrics"
	"github.com/hamed0406/sitewatch/internal/notify"
)

// Alerter turns a transition into a notification. Sending is bounded by
// Timeout, never retried, and failures only reach the log.
type Alerter struct {
	Logger   *zap.Logger
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Timeout  time.Duration
	Now      func() time.Time
}

func NewAlerter(logger *zap.Logger, notifier notify.Notifier, m *metrics.Metrics, timeout time.Duration) *Alerter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Alerter{
		Logger:   logger,
		Notifier: notifier,
		Metrics:  m,
		Timeout:  timeout,
		Now:      time.Now,
	}
}

func (a *Alerter) Dispatch(ctx context.Context, t domain.Target, tr domain.Transition, r domain.CheckResult) {
	at := r.CheckedAt
	if at.IsZero() {
		at = a.Now()
	}

	var subject, body string
	switch tr {
	case domain.TransitionDown:
		subject, body = notify.DownMessage(t, r, at)
	case domain.TransitionRecovered:
		subject, body = notify.RecoveredMessage(t, r, at)
	default:
		return
	}

	err := a.send(ctx, subject, body)
	a.Metrics.RecordNotification(tr.String(), err)
	if err != nil {
		a.Logger.Error("notify_failed",
			zap.String("name", t.Name),
			zap.String("url", t.URL),
			zap.String("transition", tr.String()),
			zap.Error(err),
		)
		return
	}
	a.Logger.Info("notify_sent",
		zap.String("name", t.Name),
		zap.String("transition", tr.String()),
		zap.String("subject", subject),
	)
}

func (a *Alerter) send(ctx context.Context, subject, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	sctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	return a.Notifier.Send(sctx, subject, body)
}
