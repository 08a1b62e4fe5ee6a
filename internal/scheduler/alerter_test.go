package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/metrics"
)

type blockingNotifier struct{ gotDeadline bool }

func (b *blockingNotifier) Send(ctx context.Context, _, _ string) error {
	_, b.gotDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestAlerter_DispatchBuildsMessages(t *testing.T) {
	nt := &memNotifier{}
	a := NewAlerter(zap.NewNop(), nt, nil, time.Second)
	tgt := domain.Target{Name: "S1", URL: "http://a"}
	at := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)

	a.Dispatch(context.Background(), tgt, domain.TransitionDown, domain.CheckResult{StatusCode: 503, CheckedAt: at})
	a.Dispatch(context.Background(), tgt, domain.TransitionRecovered, domain.CheckResult{Reachable: true, StatusCode: 200, LatencyMS: 42, CheckedAt: at})
	a.Dispatch(context.Background(), tgt, domain.TransitionNone, domain.CheckResult{})

	require.Len(t, nt.sent, 2)
	assert.Equal(t, "[ALERT] [S1] Site down", nt.sent[0].subject)
	assert.Contains(t, nt.sent[0].body, "07/06/2025 08:09:10")
	assert.Equal(t, "[OK] [S1] Site recovered", nt.sent[1].subject)
	assert.Contains(t, nt.sent[1].body, "42.00ms")
}

func TestAlerter_SendIsBounded(t *testing.T) {
	nt := &blockingNotifier{}
	m := metrics.New()
	a := NewAlerter(zap.NewNop(), nt, m, 20*time.Millisecond)

	done := make(chan struct{})
	go func() {
		a.Dispatch(context.Background(), domain.Target{Name: "S1"}, domain.TransitionDown, domain.CheckResult{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked past its timeout")
	}
	assert.True(t, nt.gotDeadline)
}

func TestAlerter_ZeroCheckedAtUsesNow(t *testing.T) {
	nt := &memNotifier{}
	a := NewAlerter(zap.NewNop(), nt, nil, 0)
	a.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	a.Dispatch(context.Background(), domain.Target{Name: "S1", URL: "http://a"}, domain.TransitionDown, domain.CheckResult{})
	require.Len(t, nt.sent, 1)
	assert.Contains(t, nt.sent[0].body, "01/01/2030 00:00:00")
	assert.Equal(t, 30*time.Second, a.Timeout)
}
