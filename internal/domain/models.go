package domain

import "time"

// Target is a monitored site. URL is the unique key.
type Target struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	URL  string `json:"url" yaml:"url" validate:"required,http_url"`
}

// StatusTimeout is the sentinel status code reported when a probe times out.
// It reuses HTTP 408 but never comes from a server.
const StatusTimeout = 408

// CheckResult is produced fresh by every probe.
//
// StatusCode is 0 when no response was obtained, StatusTimeout on timeout,
// otherwise the raw HTTP status. LatencyMS is 0 when nothing was received.
type CheckResult struct {
	Reachable  bool      `json:"reachable"`
	StatusCode int       `json:"status_code"`
	LatencyMS  float64   `json:"latency_ms"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Status returns the two-state classification of the result.
func (r CheckResult) Status() Status {
	if r.Reachable {
		return StatusUp
	}
	return StatusDown
}

type Status bool

const (
	StatusDown Status = false
	StatusUp   Status = true
)

func (s Status) String() string {
	if s {
		return "UP"
	}
	return "DOWN"
}

// SiteState is the last known classification of one target.
type SiteState struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	LastKnownUp bool   `json:"up"`
}

// Transition is the outcome of comparing a fresh probe against stored state.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionDown
	TransitionRecovered
)

func (t Transition) String() string {
	switch t {
	case TransitionDown:
		return "down"
	case TransitionRecovered:
		return "recovered"
	default:
		return "none"
	}
}

// Detect decides which notification, if any, a probe result triggers.
// Only the UP->DOWN and DOWN->UP edges fire.
func Detect(lastKnownUp, reachable bool) Transition {
	switch {
	case lastKnownUp && !reachable:
		return TransitionDown
	case !lastKnownUp && reachable:
		return TransitionRecovered
	default:
		return TransitionNone
	}
}
