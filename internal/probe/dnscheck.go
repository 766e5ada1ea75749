package probe

import (
	"context"
	"errors"
	"net"
	"strings"
)

const (
	ClassResolves      = "RESOLVES"
	ClassNXDomain      = "NXDOMAIN"
	ClassNoAddress     = "NO_A_RECORD"
	ClassServFail      = "SERVFAIL_or_TIMEOUT"
	ClassInvalidName   = "INVALID_NAME"
	ClassResolverError = "RESOLVER_ERROR"
)

// Resolver is the subset of net.Resolver the prober needs, so tests can
// swap in a fake.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// NewSystemResolver returns the OS resolver.
func NewSystemResolver() Resolver {
	return &net.Resolver{}
}

type DNSStatus struct {
	Domain        string
	Addrs         []string
	IP            string
	Class         string
	ResolverError string
	// Err is set when the failure was not a DNS error at all.
	Err error
}

// Failed reports a resolution failure in the DNS sense (not found, servfail,
// timeout, bad name, empty answer).
func (s DNSStatus) Failed() bool {
	return s.Class != ClassResolves && s.Class != ClassResolverError
}

func CheckDNS(ctx context.Context, r Resolver, domain string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(domain)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") || strings.ContainsAny(s.Domain, " /") {
		s.Class = ClassInvalidName
		return s
	}

	addrs, err := r.LookupHost(ctx, s.Domain)
	if err != nil {
		s.ResolverError = err.Error()
		var de *net.DNSError
		if !errors.As(err, &de) {
			s.Class = ClassResolverError
			s.Err = err
			return s
		}
		switch {
		case de.IsNotFound:
			s.Class = ClassNXDomain
		default:
			s.Class = ClassServFail
		}
		return s
	}
	if len(addrs) == 0 {
		s.Class = ClassNoAddress
		return s
	}

	s.Addrs = addrs
	s.IP = pickIP(addrs)
	s.Class = ClassResolves
	return s
}

// pickIP prefers the first IPv4 answer, like gethostbyname would.
func pickIP(addrs []string) string {
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	return addrs[0]
}
