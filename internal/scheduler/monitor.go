package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/metrics"
	"github.com/hamed0406/sitewatch/internal/probe"
	"github.com/hamed0406/sitewatch/internal/repo"
)

type Config struct {
	Interval     time.Duration // fixed wait after each cycle
	Timeout      time.Duration // per probe
	Concurrency  int           // 1 probes targets one after another
	PrimeOnStart bool          // seed state from a silent first probe
}

// Monitor probes every target once per cycle, notifies on up/down edges and
// records each result in Store.
type Monitor struct {
	Logger  *zap.Logger
	Targets []domain.Target
	Store   repo.StateStore
	Checker probe.Checker
	Alerter *Alerter
	Metrics *metrics.Metrics
	Clock   Clock
	// DiagnoseDNS enriches connection faults in the log. Nil disables it.
	DiagnoseDNS func(ctx context.Context, host string) probe.DNSStatus

	cfg Config
}

func NewMonitor(
	logger *zap.Logger,
	targets []domain.Target,
	store repo.StateStore,
	checker probe.Checker,
	alerter *Alerter,
	m *metrics.Metrics,
	cfg Config,
) *Monitor {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 300 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Monitor{
		Logger:      logger,
		Targets:     targets,
		Store:       store,
		Checker:     checker,
		Alerter:     alerter,
		Metrics:     m,
		Clock:       RealClock,
		DiagnoseDNS: probe.DiagnoseDNS,
		cfg:         cfg,
	}
}

// Run primes state if configured, then runs a cycle, waits Interval and
// repeats until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.Logger.Info("monitor_started",
		zap.Int("sites", len(m.Targets)),
		zap.Duration("interval", m.cfg.Interval),
		zap.Int("concurrency", m.cfg.Concurrency),
	)

	if m.cfg.PrimeOnStart {
		m.Prime(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			m.Logger.Info("monitor_stopped")
			return err
		}
		m.RunCycle(ctx)

		select {
		case <-ctx.Done():
			m.Logger.Info("monitor_stopped")
			return ctx.Err()
		case <-m.Clock.After(m.cfg.Interval):
		}
	}
}

// RunCycle checks every target once, in configuration order unless
// Concurrency allows several probes at a time.
func (m *Monitor) RunCycle(ctx context.Context) {
	log := m.Logger.With(zap.String("cycle_id", uuid.NewString()))
	start := m.Clock.Now()
	log.Debug("cycle_start", zap.Int("sites", len(m.Targets)))

	m.each(ctx, func(t domain.Target) { m.processTarget(ctx, log, t) })

	log.Debug("cycle_done", zap.Duration("took", m.Clock.Now().Sub(start)))
}

// Prime probes every target once and stores the result without notifying.
func (m *Monitor) Prime(ctx context.Context) {
	m.each(ctx, func(t domain.Target) {
		res, err := m.check(ctx, t.URL)
		if ctx.Err() != nil {
			return
		}
		m.Store.Set(t.URL, res.Reachable)
		m.Metrics.SetSiteUp(t.Name, res.Reachable)
		m.Logger.Info("primed",
			zap.String("name", t.Name),
			zap.String("url", t.URL),
			zap.Bool("up", res.Reachable),
			zap.Int("status", res.StatusCode),
			zap.NamedError("fault", err),
		)
	})
}

func (m *Monitor) each(ctx context.Context, fn func(domain.Target)) {
	if m.cfg.Concurrency == 1 {
		for _, t := range m.Targets {
			if ctx.Err() != nil {
				return
			}
			fn(t)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(m.cfg.Concurrency)
	for _, t := range m.Targets {
		if ctx.Err() != nil {
			break
		}
		t := t
		g.Go(func() error {
			fn(t)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Monitor) processTarget(ctx context.Context, log *zap.Logger, t domain.Target) {
	res, err := m.check(ctx, t.URL)
	if ctx.Err() != nil {
		// shutting down; the probe was cut short
		return
	}
	m.logCheck(ctx, log, t, res, err)
	m.Metrics.RecordCheck(t.Name, res.Reachable, res.LatencyMS)

	m.Store.Apply(t.URL, res.Reachable, func(lastKnownUp bool) {
		if tr := domain.Detect(lastKnownUp, res.Reachable); tr != domain.TransitionNone {
			m.Alerter.Dispatch(ctx, t, tr, res)
		}
	})
	m.Metrics.SetSiteUp(t.Name, res.Reachable)
}

// check runs one probe under its own deadline. Whatever the checker does,
// the result is a classification plus, at most, a *probe.Fault.
func (m *Monitor) check(ctx context.Context, url string) (res domain.CheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = probe.Unreachable(probe.FaultUnexpected, domain.CheckResult{CheckedAt: m.Clock.Now()})
			err = &probe.Fault{Kind: probe.FaultUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	res, err = m.Checker.Check(cctx, url)
	if res.CheckedAt.IsZero() {
		res.CheckedAt = m.Clock.Now()
	}
	if err == nil {
		return res, nil
	}
	var f *probe.Fault
	if !errors.As(err, &f) {
		f = &probe.Fault{Kind: probe.FaultUnexpected, Err: err}
	}
	return probe.Unreachable(f.Kind, res), f
}

func (m *Monitor) logCheck(ctx context.Context, log *zap.Logger, t domain.Target, res domain.CheckResult, err error) {
	fields := []zap.Field{
		zap.String("name", t.Name),
		zap.String("url", t.URL),
		zap.Int("status", res.StatusCode),
		zap.Float64("latency_ms", res.LatencyMS),
	}
	if res.Reachable {
		log.Info("[OK]", fields...)
		return
	}

	var f *probe.Fault
	if errors.As(err, &f) {
		fields = append(fields, zap.String("fault", f.Kind.String()), zap.Error(f.Err))
		if f.Kind == probe.FaultConnection && m.DiagnoseDNS != nil {
			dns := m.DiagnoseDNS(ctx, probe.HostOf(t.URL))
			fields = append(fields,
				zap.String("dns_class", dns.Class),
				zap.Strings("nameservers", dns.Nameservers),
			)
		}
	}
	log.Warn("[DOWN]", fields...)
}
