package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pynezz/nauthiz/internal/config"

	"github.com/pynezz/pynezzentials/ansi"
)

// Orchestrator fans a lookup out to every applicable provider at once
// and joins on a single shared deadline. One slow or dead provider
// never holds up or fails the batch; only the batch deadline does.
type Orchestrator struct {
	cfg *config.Cfg

	// Providers overrides the config-built adapter set when non-nil.
	// Tests inject fakes here.
	Providers []Provider

	// Timeout overrides the configured batch deadline when non-zero.
	Timeout time.Duration
}

func NewOrchestrator(cfg *config.Cfg) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// providers returns the adapter set for this call. Built per call so a
// config reload picks up rotated credentials without a restart.
func (o *Orchestrator) providers() []Provider {
	if o.Providers != nil {
		return o.Providers
	}
	vt, st, hunter := o.cfg.ProviderCredentials()
	return []Provider{
		NewVirusTotalClient(vt),
		NewSecurityTrailsClient(st),
		NewWhoisClient(hunter),
	}
}

func (o *Orchestrator) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if o.cfg != nil {
		if d := o.cfg.EnrichTimeout(); d > 0 {
			return d
		}
	}
	return 10 * time.Second
}

// Enrich looks the indicator up in every applicable provider
// concurrently and returns one Result per provider name.
//
/// Hash indicators get no external calls: the providers only hold
// ip/domain intelligence. If the shared deadline elapses before the
// whole batch completes, every in-flight lookup is cancelled and the
// map comes back empty; the caller still scores (to zero) and the
// request still succeeds.
func (o *Orchestrator) Enrich(ctx context.Context, ioc string, iocType IOCType) map[string]Result {
	results := make(map[string]Result)
	if iocType == IOCTypeHash {
		ansi.PrintInfo("Skipping providers for hash indicator " + ioc)
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout())
	defer cancel()

	providers := o.providers()
	slots := make([]Result, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			slots[i] = p.Lookup(ctx, ioc, iocType)
		}(i, p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Whole-batch timeout: completed work is discarded along with
		// the stragglers.
		ansi.PrintWarning(fmt.Sprintf("Enrichment deadline elapsed after %s for %s", o.timeout(), ioc))
		return results
	}

	for _, r := range slots {
		if f, ok := r.(Failure); ok {
			ansi.PrintWarning(fmt.Sprintf("%s lookup failed: %s", f.Source, f.Reason))
		}
		results[r.Provider()] = r
	}
	return results
}
