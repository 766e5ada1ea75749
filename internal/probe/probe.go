package probe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultTimeout = 5 * time.Second

// Prober resolves a hostname and then tries HTTPS against it.
type Prober struct {
	Resolver Resolver
	HTTPS    *HTTPSChecker
	Timeout  time.Duration
}

func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Resolver: NewSystemResolver(),
		HTTPS:    NewHTTPSChecker(timeout),
		Timeout:  timeout,
	}
}

// Check implements Checker.
func (p *Prober) Check(ctx context.Context, host string) Result {
	return p.Probe(ctx, host)
}

// Probe does one DNS lookup and at most one HTTPS GET. A server that answers
// at all, or a name that resolves while HTTPS fails locally, counts as
// reachable. Only DNS failure and 5xx outside 502/503/504 are unreachable.
func (p *Prober) Probe(ctx context.Context, host string) Result {
	start := time.Now()
	res := Result{Domain: host}

	dctx, cancel := context.WithTimeout(ctx, p.timeout())
	dns := CheckDNS(dctx, p.Resolver, host)
	cancel()

	// a cancelled scan says nothing about the endpoint
	if err := ctx.Err(); err != nil {
		return aborted(res, err, start)
	}
	res.DNSClass = dns.Class
	if dns.Err != nil {
		res.Message = "Error: " + dns.Err.Error()
		return finish(res, start)
	}
	if dns.Failed() {
		res.Message = "DNS resolution failed"
		return finish(res, start)
	}
	res.IP = dns.IP

	code, err := p.HTTPS.Get(ctx, host)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return aborted(res, cerr, start)
		}
		var re *requestError
		if errors.As(err, &re) {
			res.Message = "Error: " + re.Error()
			return finish(res, start)
		}
		res.Success = true
		res.Message = fmt.Sprintf("DNS Resolved - IP: %s (HTTPS connection failed)", res.IP)
		return finish(res, start)
	}

	res.StatusCode = code
	if Reachable(code) {
		res.Success = true
		desc := "Accessible"
		if code >= 400 {
			desc = fmt.Sprintf("Accessible (Status: %d)", code)
		}
		res.Message = fmt.Sprintf("%s (HTTPS) - IP: %s", desc, res.IP)
		return finish(res, start)
	}
	res.Message = fmt.Sprintf("HTTP Error %d - IP: %s", code, res.IP)
	return finish(res, start)
}

// Reachable reports whether an HTTP status proves the path works:
// anything below 500, plus the gateway errors 502, 503 and 504.
func Reachable(code int) bool {
	switch {
	case code < 500:
		return true
	case code == 502, code == 503, code == 504:
		return true
	}
	return false
}

func aborted(r Result, err error, start time.Time) Result {
	r.Success = false
	r.Message = "Error: " + err.Error()
	return finish(r, start)
}

func finish(r Result, start time.Time) Result {
	r.LatencyMS = time.Since(start).Seconds() * 1000
	return r
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}
