package enrich

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProvider returns a canned result after an optional delay, and
// counts how often it was called.
type fakeProvider struct {
	name   string
	result Result
	delay  time.Duration
	calls  atomic.Int64
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Lookup(ctx context.Context, ioc string, iocType IOCType) Result {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Failure{Source: f.name, Reason: ctx.Err().Error()}
		}
	}
	return f.result
}

func testOrchestrator(timeout time.Duration, providers ...Provider) *Orchestrator {
	return &Orchestrator{Providers: providers, Timeout: timeout}
}

func TestEnrichHashMakesNoCalls(t *testing.T) {
	vt := &fakeProvider{name: SourceVirusTotal, result: Reputation{Detections: 9}}
	st := &fakeProvider{name: SourceSecurityTrails, result: DNSHistory{Resolutions: 1}}
	who := &fakeProvider{name: SourceWhois, result: Whois{Emails: 1}}

	o := testOrchestrator(time.Second, vt, st, who)
	results := o.Enrich(context.Background(), "d41d8cd98f00b204e9800998ecf8427e", IOCTypeHash)

	if len(results) != 0 {
		t.Errorf("got %d results for hash, want 0", len(results))
	}
	if n := vt.calls.Load() + st.calls.Load() + who.calls.Load(); n != 0 {
		t.Errorf("providers called %d times for hash, want 0", n)
	}
}

func TestEnrichFanOutCollectsAll(t *testing.T) {
	vt := &fakeProvider{name: SourceVirusTotal, result: Reputation{Detections: 6}}
	st := &fakeProvider{name: SourceSecurityTrails, result: DNSHistory{Resolutions: 2}}
	who := &fakeProvider{name: SourceWhois, result: Whois{Emails: 4}}

	o := testOrchestrator(time.Second, vt, st, who)
	results := o.Enrich(context.Background(), "evil.example", IOCTypeDomain)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	rep, ok := results[SourceVirusTotal].(Reputation)
	if !ok || rep.Detections != 6 {
		t.Errorf("virustotal result = %#v", results[SourceVirusTotal])
	}
	if vt.calls.Load() != 1 || st.calls.Load() != 1 || who.calls.Load() != 1 {
		t.Errorf("each provider should be called exactly once")
	}
}

func TestEnrichRunsConcurrently(t *testing.T) {
	// Three providers each taking 80ms must finish well under 240ms.
	delay := 80 * time.Millisecond
	providers := []Provider{
		&fakeProvider{name: SourceVirusTotal, result: Reputation{}, delay: delay},
		&fakeProvider{name: SourceSecurityTrails, result: DNSHistory{}, delay: delay},
		&fakeProvider{name: SourceWhois, result: Whois{}, delay: delay},
	}

	o := testOrchestrator(time.Second, providers...)
	start := time.Now()
	results := o.Enrich(context.Background(), "evil.example", IOCTypeDomain)
	elapsed := time.Since(start)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if elapsed > 2*delay {
		t.Errorf("batch took %s, expected roughly max(latencies) = %s", elapsed, delay)
	}
}

func TestEnrichSingleFailureDoesNotFailBatch(t *testing.T) {
	vt := &fakeProvider{name: SourceVirusTotal, result: Failure{Source: SourceVirusTotal, Reason: "503"}}
	st := &fakeProvider{name: SourceSecurityTrails, result: DNSHistory{Resolutions: 1}}
	who := &fakeProvider{name: SourceWhois, result: Whois{Registrar: "GoDaddy"}}

	o := testOrchestrator(time.Second, vt, st, who)
	results := o.Enrich(context.Background(), "1.2.3.4", IOCTypeIP)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[SourceVirusTotal].Successful() {
		t.Errorf("virustotal should have failed")
	}
	if !results[SourceSecurityTrails].Successful() || !results[SourceWhois].Successful() {
		t.Errorf("siblings of a failed provider must still succeed")
	}
}

func TestEnrichBatchTimeoutReturnsEmpty(t *testing.T) {
	slow := 500 * time.Millisecond
	providers := []Provider{
		&fakeProvider{name: SourceVirusTotal, result: Reputation{Detections: 9}, delay: slow},
		&fakeProvider{name: SourceSecurityTrails, result: DNSHistory{Resolutions: 1}, delay: slow},
		&fakeProvider{name: SourceWhois, result: Whois{Emails: 1}, delay: slow},
	}

	o := testOrchestrator(50*time.Millisecond, providers...)
	results := o.Enrich(context.Background(), "evil.example", IOCTypeDomain)

	if len(results) != 0 {
		t.Errorf("got %d results after batch timeout, want 0", len(results))
	}
}

func TestEnrichSkippedWithoutCredential(t *testing.T) {
	o := testOrchestrator(time.Second,
		NewVirusTotalClient(""),
		NewSecurityTrailsClient(""),
		NewWhoisClient(""),
	)
	results := o.Enrich(context.Background(), "evil.example", IOCTypeDomain)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for name, r := range results {
		if _, ok := r.(Skipped); !ok {
			t.Errorf("%s = %#v, want Skipped", name, r)
		}
	}
}
