package probe

import (
	"context"
	"fmt"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Checker performs a single reachability check for a target URL.
//
// A nil error means the probe obtained a response. A non-nil error is always a
// *Fault, and the returned CheckResult then already carries the downgraded
// classification (unreachable, status 0 or StatusTimeout, latency 0).
type Checker interface {
	Check(ctx context.Context, target string) (domain.CheckResult, error)
}

type FaultKind int

const (
	FaultConnection FaultKind = iota + 1 // DNS, refused, reset, TLS
	FaultTimeout
	FaultUnexpected
)

func (k FaultKind) String() string {
	switch k {
	case FaultConnection:
		return "connection"
	case FaultTimeout:
		return "timeout"
	case FaultUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Fault is the error arm of a probe.
type Fault struct {
	Kind FaultKind
	Err  error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Unreachable builds the result reported for a fault of the given kind.
func Unreachable(kind FaultKind, r domain.CheckResult) domain.CheckResult {
	r.Reachable = false
	r.LatencyMS = 0
	r.StatusCode = 0
	if kind == FaultTimeout {
		r.StatusCode = domain.StatusTimeout
	}
	return r
}
