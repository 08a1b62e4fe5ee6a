package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// maxDrain bounds how much of a response body is read so the connection can be reused.
const maxDrain = 64 << 10

type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker returns a checker that issues GET requests, follows redirects
// and gives up after timeout.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &net.Dialer{Timeout: timeout / 2, KeepAlive: 30 * time.Second}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout, Transport: newTransport(d.DialContext)},
	}
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// dialError marks failures before a connection exists. They are connection
// faults even when the dial timed out.
type dialError struct{ err error }

func (e *dialError) Error() string { return e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }

func newTransport(dial dialFunc) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		c, err := dial(ctx, network, addr)
		if err != nil {
			return nil, &dialError{err: err}
		}
		return c, nil
	}
	return tr
}

func (h *HTTPChecker) Check(ctx context.Context, target string) (res domain.CheckResult, err error) {
	res.CheckedAt = time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Unreachable(FaultUnexpected, res)
			err = &Fault{Kind: FaultUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Unreachable(FaultUnexpected, res), &Fault{Kind: FaultUnexpected, Err: err}
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		kind := classify(err)
		return Unreachable(kind, res), &Fault{Kind: kind, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	// 4xx still means the server is up and answering.
	res.Reachable = resp.StatusCode < http.StatusInternalServerError
	res.StatusCode = resp.StatusCode
	res.LatencyMS = roundMS(elapsed)
	return res, nil
}

func roundMS(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}

func classify(err error) FaultKind {
	var de *dialError
	if errors.As(err, &de) {
		return FaultConnection
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return FaultTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FaultTimeout
	}

	var (
		dnsErr  *net.DNSError
		opErr   *net.OpError
		verErr  *tls.CertificateVerificationError
		hostErr x509.HostnameError
		authErr x509.UnknownAuthorityError
		invErr  x509.CertificateInvalidError
		recErr  tls.RecordHeaderError
	)
	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.As(err, &verErr),
		errors.As(err, &hostErr),
		errors.As(err, &authErr),
		errors.As(err, &invErr),
		errors.As(err, &recErr):
		return FaultConnection
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return FaultConnection
	}
	return FaultUnexpected
}
