package scheduler

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/catalog"
	"github.com/hamed0406/runnercheck/internal/probe"
)

// --- fakes ---

// jitterChecker sleeps a host-dependent amount so completion order differs
// from submission order, and tracks peak concurrency.
type jitterChecker struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int
	fail     map[string]bool
	panicOn  string
}

func (f *jitterChecker) Check(ctx context.Context, host string) probe.Result {
	f.mu.Lock()
	f.inFlight++
	f.calls++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	h := fnv.New32a()
	h.Write([]byte(host))
	time.Sleep(time.Duration(h.Sum32()%7) * time.Millisecond)

	if host == f.panicOn {
		panic("checker blew up")
	}
	if f.fail[host] {
		return probe.Result{Domain: host, Message: "DNS resolution failed"}
	}
	return probe.Result{Domain: host, Success: true, Message: "Accessible (HTTPS) - IP: 127.0.0.1", IP: "127.0.0.1", StatusCode: 200}
}

// --- tests ---

func TestScanner_PreservesCatalogOrder(t *testing.T) {
	cat := catalog.Default()
	s := NewScanner(zap.NewNop(), &jitterChecker{}, 10)
	rep := s.Scan(context.Background(), cat)

	if len(rep.Categories) != len(cat) {
		t.Fatalf("want %d categories, got %d", len(cat), len(rep.Categories))
	}
	for i, c := range cat {
		got := rep.Categories[i]
		if got.Category != c.Name {
			t.Fatalf("category %d: want %q got %q", i, c.Name, got.Category)
		}
		var domains []string
		for _, o := range got.Outcomes {
			domains = append(domains, o.Domain)
		}
		if diff := cmp.Diff(c.Hosts(), domains); diff != "" {
			t.Fatalf("%s order mismatch (-want +got):\n%s", c.Name, diff)
		}
	}
	if !rep.AllReachable() {
		t.Fatalf("all fake probes succeed; report says otherwise")
	}
	if rep.RunID == "" || rep.FinishedAt.Before(rep.StartedAt) {
		t.Fatalf("run metadata not set: %+v", rep)
	}
}

func TestScanner_RepeatedHostsProbedPerCategory(t *testing.T) {
	chk := &jitterChecker{}
	cat := catalog.Default()
	NewScanner(zap.NewNop(), chk, 4).Scan(context.Background(), cat)
	if chk.calls != cat.HostCount() {
		t.Fatalf("want %d probes (no dedup), got %d", cat.HostCount(), chk.calls)
	}
}

func TestScanner_BoundedParallelism(t *testing.T) {
	chk := &jitterChecker{}
	NewScanner(zap.NewNop(), chk, 3).Scan(context.Background(), catalog.Default())
	if chk.peak > 3 {
		t.Fatalf("peak concurrency %d exceeds pool size 3", chk.peak)
	}
	if chk.peak < 2 {
		t.Fatalf("probes never overlapped (peak %d); pool is not being used", chk.peak)
	}
}

func TestScanner_FailuresDoNotStopScan(t *testing.T) {
	chk := &jitterChecker{
		fail:    map[string]bool{"github.com": true},
		panicOn: "ghcr.io",
	}
	cat := catalog.Default()
	rep := NewScanner(zap.NewNop(), chk, 10).Scan(context.Background(), cat)

	if rep.AllReachable() {
		t.Fatalf("expected AllReachable=false")
	}
	total := 0
	for _, c := range rep.Categories {
		total += len(c.Outcomes)
	}
	if total != cat.HostCount() {
		t.Fatalf("want %d outcomes, got %d", cat.HostCount(), total)
	}

	pk := rep.Category("GitHub Packages & Publishing Actions")
	if pk == nil || pk.Outcomes[0].Domain != "ghcr.io" || pk.Outcomes[0].Success {
		t.Fatalf("panicking probe should be a failed outcome: %+v", pk)
	}
	if !strings.HasPrefix(pk.Outcomes[0].Message, "Error: ") {
		t.Fatalf("unexpected panic message %q", pk.Outcomes[0].Message)
	}
	if len(rep.Category("Essential Operations").Failures()) != 1 {
		t.Fatalf("want exactly one failure in Essential Operations")
	}
}

func TestScanner_EmptyCategory(t *testing.T) {
	cat := catalog.Catalog{{Name: "Empty"}, {Name: "One", Patterns: []catalog.Pattern{"a.example"}}}
	rep := NewScanner(zap.NewNop(), &jitterChecker{}, 0).Scan(context.Background(), cat)
	if len(rep.Categories) != 2 || len(rep.Categories[0].Outcomes) != 0 || len(rep.Categories[1].Outcomes) != 1 {
		t.Fatalf("unexpected report %+v", rep.Categories)
	}
}
