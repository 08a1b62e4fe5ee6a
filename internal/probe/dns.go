package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// DNS classes reported by DiagnoseDNS.
const (
	DNSResolves     = "RESOLVES"
	DNSNoARecord    = "NO_A_RECORD"
	DNSNXDomain     = "NXDOMAIN"
	DNSServfail     = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName  = "INVALID_NAME"
	defaultDNSLimit = 3 * time.Second
)

// DNSStatus explains why a host may be unreachable. It is diagnostic only and
// never changes how a probe is classified.
type DNSStatus struct {
	Domain        string
	IPs           []net.IP
	CNAME         string
	Nameservers   []string
	Class         string
	ResolverError string
}

// Resolver is the subset of *net.Resolver used for diagnosis.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

// DiagnoseDNS classifies host using the OS resolver.
func DiagnoseDNS(ctx context.Context, host string) DNSStatus {
	return DiagnoseDNSWith(ctx, net.DefaultResolver, host)
}

func DiagnoseDNSWith(ctx context.Context, r Resolver, host string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(host)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") {
		s.Class = DNSInvalidName
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, defaultDNSLimit)
	defer cancel()

	ips, err := r.LookupIP(ctx, "ip", s.Domain)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = DNSResolves
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSServfail
			}
		}
	}

	if cname, err := r.LookupCNAME(ctx, s.Domain); err == nil && !strings.EqualFold(cname, s.Domain+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}

	if ns, err := r.LookupNS(ctx, s.Domain); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == DNSNXDomain {
			s.Class = DNSNoARecord
		}
	}

	if s.Class == "" {
		switch {
		case len(s.IPs) > 0:
			s.Class = DNSResolves
		case len(s.Nameservers) > 0:
			s.Class = DNSNoARecord
		case s.ResolverError != "":
			s.Class = DNSServfail
		default:
			s.Class = DNSNXDomain
		}
	}
	return s
}

// HostOf pulls the hostname out of a URL, falling back to the raw string.
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
