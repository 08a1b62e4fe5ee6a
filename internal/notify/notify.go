package notify

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier delivers a subject/body pair through some channel. Delivery is
// best effort: callers log the error and move on.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Multi sends to every channel and reports all failures together.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, subject, body string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, subject, body))
	}
	return err
}

// Log writes notifications to the log sink. It stands in when no delivery
// channel is configured so transitions are still visible.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, subject, body string) error {
	l.Logger.Warn("notification", zap.String("subject", subject), zap.String("body", body))
	return nil
}
