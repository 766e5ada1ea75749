package probe

import "context"

// Result holds the outcome of probing a single hostname.
//
// Fields:
//   - Success: the reachability judgment (see Prober.Probe for the policy).
//   - Message: human-readable detail, stable enough to grep for.
//   - StatusCode: HTTP status when a response arrived; 0 otherwise.
//   - DNSClass: resolver classification, mostly useful for logs.
type Result struct {
	Domain     string
	Success    bool
	Message    string
	IP         string
	StatusCode int
	LatencyMS  float64
	DNSClass   string
}

// Checker probes one concrete hostname.
type Checker interface {
	Check(ctx context.Context, host string) Result
}
