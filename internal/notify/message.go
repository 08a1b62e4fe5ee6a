package notify

import (
	"fmt"
	"time"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// TimeLayout is the day-first timestamp used in alert bodies.
const TimeLayout = "02/01/2006 15:04:05"

// DownMessage builds the alert sent when a target goes from up to down.
func DownMessage(t domain.Target, r domain.CheckResult, at time.Time) (subject, body string) {
	subject = fmt.Sprintf("[ALERT] [%s] Site down", t.Name)
	body = fmt.Sprintf(
		"The site was detected as down.\n\n"+
			"URL:    %s\n"+
			"Status: %d\n"+
			"Time:   %s\n\n"+
			"Another alert will be sent when the site recovers.",
		t.URL, r.StatusCode, at.Format(TimeLayout),
	)
	return subject, body
}

// RecoveredMessage builds the alert sent when a target comes back up.
func RecoveredMessage(t domain.Target, r domain.CheckResult, at time.Time) (subject, body string) {
	subject = fmt.Sprintf("[OK] [%s] Site recovered", t.Name)
	body = fmt.Sprintf(
		"The site is back online.\n\n"+
			"URL:           %s\n"+
			"Status:        %d\n"+
			"Response time: %.2fms\n"+
			"Time:          %s",
		t.URL, r.StatusCode, r.LatencyMS, at.Format(TimeLayout),
	)
	return subject, body
}
