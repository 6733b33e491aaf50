/* enrich is the package that queries external threat-intel sources and
   normalizes their responses for the scoring engine. */

package enrich

import "context"

// IOCType is the type tag of an indicator of compromise.
type IOCType string

const (
	IOCTypeIP     IOCType = "ip"
	IOCTypeDomain IOCType = "domain"
	IOCTypeHash   IOCType = "hash"
)

// ParseIOCType validates a type tag. An empty tag defaults to domain.
func ParseIOCType(s string) (IOCType, bool) {
	switch IOCType(s) {
	case IOCTypeIP, IOCTypeDomain, IOCTypeHash:
		return IOCType(s), true
	case "":
		return IOCTypeDomain, true
	}
	return "", false
}

// Provider names in registration order. The scorer walks this slice so
// that identical result maps always produce identical source lists.
const (
	SourceVirusTotal     = "virustotal"
	SourceSecurityTrails = "securitytrails"
	SourceWhois          = "whois"
)

// Result is the closed set of per-provider outcomes. Each success
// variant carries only that provider's normalized fields; the scorer
// type-switches over the set and never sees upstream payloads.
type Result interface {
	Provider() string
	Successful() bool
}

// Skipped means the provider's credential is not configured. No call
// was made.
type Skipped struct {
	Source string `json:"-"`
}

// Failure is a transport error, non-2xx response, or malformed payload.
// It never fails the batch.
type Failure struct {
	Source string `json:"-"`
	Reason string `json:"reason"`
}

// Reputation is the normalized outcome of the reputation provider.
type Reputation struct {
	Detections int    `json:"detections"`
	Reference  string `json:"url,omitempty"`
}

// DNSHistory is the normalized outcome of the passive-DNS provider.
type DNSHistory struct {
	Resolutions int `json:"resolutions"`
}

// Whois is the normalized outcome of the WHOIS/OSINT provider.
type Whois struct {
	Registrar string `json:"registrar,omitempty"`
	Emails    int    `json:"emails"`
}

func (s Skipped) Provider() string { return s.Source }
func (s Skipped) Successful() bool { return false }

func (f Failure) Provider() string { return f.Source }
func (f Failure) Successful() bool { return false }

func (Reputation) Provider() string { return SourceVirusTotal }
func (Reputation) Successful() bool { return true }

func (DNSHistory) Provider() string { return SourceSecurityTrails }
func (DNSHistory) Successful() bool { return true }

func (Whois) Provider() string { return SourceWhois }
func (Whois) Successful() bool { return true }

// Provider is a single external threat-intel source. Lookup never
// panics and never returns a Go error: transport problems come back as
// a Failure result and a missing credential as Skipped, so one dead
// source can't take down the batch. Implementations must honor ctx
// cancellation promptly.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ioc string, iocType IOCType) Result
}
