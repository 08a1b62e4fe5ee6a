package probe

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/hamed0406/sitewatch/internal/domain"
)

func statusServer(t *testing.T, code int) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("want GET, got %s", r.Method)
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte("body"))
	}))
	t.Cleanup(s.Close)
	return s
}

func TestHTTPChecker_ClassificationBoundary(t *testing.T) {
	cases := []struct {
		code      int
		reachable bool
	}{
		{200, true},
		{404, true},
		{499, true},
		{500, false},
		{503, false},
	}
	chk := NewHTTPChecker(2 * time.Second)
	for _, c := range cases {
		s := statusServer(t, c.code)
		out, err := chk.Check(context.Background(), s.URL)
		if err != nil {
			t.Fatalf("code %d: unexpected fault %v", c.code, err)
		}
		if out.Reachable != c.reachable {
			t.Fatalf("code %d: want reachable=%v, got %+v", c.code, c.reachable, out)
		}
		if out.StatusCode != c.code {
			t.Fatalf("want status %d, got %d", c.code, out.StatusCode)
		}
		if out.LatencyMS < 0 {
			t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
		}
		if out.LatencyMS != math.Round(out.LatencyMS*100)/100 {
			t.Fatalf("latency not rounded to 2 decimals: %v", out.LatencyMS)
		}
	}
}

func TestHTTPChecker_FollowsRedirects(t *testing.T) {
	final := statusServer(t, 200)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer s.Close()

	out, err := NewHTTPChecker(2*time.Second).Check(context.Background(), s.URL)
	if err != nil || !out.Reachable || out.StatusCode != 200 {
		t.Fatalf("want 200 after redirect, got %+v err=%v", out, err)
	}
}

func TestHTTPChecker_TimeoutReports408(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.WriteHeader(200)
	}))
	defer s.Close()

	out, err := NewHTTPChecker(50*time.Millisecond).Check(context.Background(), s.URL)
	if out.Reachable {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.StatusCode != domain.StatusTimeout || out.LatencyMS != 0 {
		t.Fatalf("want 408 / 0ms on timeout, got %+v", out)
	}
	var f *Fault
	if !errors.As(err, &f) || f.Kind != FaultTimeout {
		t.Fatalf("want timeout fault, got %v", err)
	}
}

func TestHTTPChecker_ConnectionRefusedReportsZero(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := s.URL
	s.Close()

	out, err := NewHTTPChecker(time.Second).Check(context.Background(), url)
	if out.Reachable || out.StatusCode != 0 || out.LatencyMS != 0 {
		t.Fatalf("want unreachable/0/0, got %+v", out)
	}
	var f *Fault
	if !errors.As(err, &f) || f.Kind != FaultConnection {
		t.Fatalf("want connection fault, got %v", err)
	}
}

func TestHTTPChecker_TLSFailureReportsZero(t *testing.T) {
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	// self-signed certificate, unknown to the default roots
	out, err := NewHTTPChecker(time.Second).Check(context.Background(), s.URL)
	if out.Reachable || out.StatusCode != 0 || out.LatencyMS != 0 {
		t.Fatalf("want unreachable/0/0, got %+v", out)
	}
	var f *Fault
	if !errors.As(err, &f) || f.Kind != FaultConnection {
		t.Fatalf("want connection fault, got %v", err)
	}
}

func TestHTTPChecker_DialFailuresReportZero(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "down.invalid", IsNotFound: true}},
		{"connect timeout", &net.OpError{Op: "dial", Net: "tcp", Err: os.ErrDeadlineExceeded}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
				return nil, tc.err
			}
			h := &HTTPChecker{Client: &http.Client{Timeout: time.Second, Transport: newTransport(dial)}}

			out, err := h.Check(context.Background(), "http://down.invalid/")
			if out.Reachable || out.StatusCode != 0 || out.LatencyMS != 0 {
				t.Fatalf("want unreachable/0/0, got %+v", out)
			}
			var f *Fault
			if !errors.As(err, &f) || f.Kind != FaultConnection {
				t.Fatalf("want connection fault, got %v", err)
			}
		})
	}
}

func TestHTTPChecker_BadURLIsUnexpectedFault(t *testing.T) {
	out, err := NewHTTPChecker(time.Second).Check(context.Background(), "://nope")
	if out.Reachable || out.StatusCode != 0 {
		t.Fatalf("want unreachable/0, got %+v", out)
	}
	var f *Fault
	if !errors.As(err, &f) || f.Kind != FaultUnexpected {
		t.Fatalf("want unexpected fault, got %v", err)
	}
	if f.Error() == "" {
		t.Fatalf("want non-empty error message")
	}
}

func TestUnreachable(t *testing.T) {
	in := domain.CheckResult{Reachable: true, StatusCode: 200, LatencyMS: 3}
	if got := Unreachable(FaultTimeout, in); got.Reachable || got.StatusCode != 408 || got.LatencyMS != 0 {
		t.Fatalf("timeout: %+v", got)
	}
	if got := Unreachable(FaultConnection, in); got.Reachable || got.StatusCode != 0 {
		t.Fatalf("connection: %+v", got)
	}
}
