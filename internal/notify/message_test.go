package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hamed0406/sitewatch/internal/domain"
)

var at = time.Date(2025, 12, 31, 23, 59, 1, 0, time.UTC)

func TestDownMessage(t *testing.T) {
	subject, body := DownMessage(domain.Target{Name: "S1", URL: "http://a"}, domain.CheckResult{StatusCode: 503}, at)
	assert.Equal(t, "[ALERT] [S1] Site down", subject)
	assert.Contains(t, body, "http://a")
	assert.Contains(t, body, "503")
	assert.Contains(t, body, "31/12/2025 23:59:01")
}

func TestRecoveredMessage(t *testing.T) {
	subject, body := RecoveredMessage(domain.Target{Name: "S1", URL: "http://a"},
		domain.CheckResult{Reachable: true, StatusCode: 200, LatencyMS: 42.0}, at)
	assert.Equal(t, "[OK] [S1] Site recovered", subject)
	assert.Contains(t, body, "http://a")
	assert.Contains(t, body, "200")
	assert.Contains(t, body, "42.00ms")
	assert.Contains(t, body, "31/12/2025 23:59:01")
}
