package scoring

import (
	"reflect"
	"testing"

	"github.com/pynezz/nauthiz/internal/enrich"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskLow},
		{24, RiskLow},
		{25, RiskMedium},
		{49, RiskMedium},
		{50, RiskHigh},
		{69, RiskHigh},
		{70, RiskCritical},
		{100, RiskCritical},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreWorkedExample(t *testing.T) {
	// 6 detections, 2 resolutions, no registrar:
	// min(6*5,50) + 10 + 0 = 40 -> medium
	results := map[string]enrich.Result{
		enrich.SourceVirusTotal:     enrich.Reputation{Detections: 6},
		enrich.SourceSecurityTrails: enrich.DNSHistory{Resolutions: 2},
		enrich.SourceWhois:          enrich.Whois{Registrar: "", Emails: 3},
	}

	score, risk, sources := Score(results)
	if score != 40 {
		t.Fatalf("score = %d, want 40", score)
	}
	if risk != RiskMedium {
		t.Errorf("risk = %s, want medium", risk)
	}
	want := []string{enrich.SourceVirusTotal, enrich.SourceSecurityTrails, enrich.SourceWhois}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("sources = %v, want %v", sources, want)
	}
}

func TestScoreWithoutWhoisResult(t *testing.T) {
	results := map[string]enrich.Result{
		enrich.SourceVirusTotal:     enrich.Reputation{Detections: 6},
		enrich.SourceSecurityTrails: enrich.DNSHistory{Resolutions: 2},
		enrich.SourceWhois:          enrich.Failure{Source: enrich.SourceWhois, Reason: "timeout"},
	}

	score, risk, sources := Score(results)
	if score != 40 {
		t.Fatalf("score = %d, want 40", score)
	}
	if risk != RiskMedium {
		t.Errorf("risk = %s, want medium", risk)
	}
	want := []string{enrich.SourceVirusTotal, enrich.SourceSecurityTrails}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("sources = %v, want %v", sources, want)
	}
}

func TestScoreAllSkipped(t *testing.T) {
	results := map[string]enrich.Result{
		enrich.SourceVirusTotal:     enrich.Skipped{Source: enrich.SourceVirusTotal},
		enrich.SourceSecurityTrails: enrich.Skipped{Source: enrich.SourceSecurityTrails},
		enrich.SourceWhois:          enrich.Skipped{Source: enrich.SourceWhois},
	}

	score, risk, sources := Score(results)
	if score != 0 || risk != RiskLow || len(sources) != 0 {
		t.Errorf("got (%d, %s, %v), want (0, low, [])", score, risk, sources)
	}
}

func TestScoreEmptyResults(t *testing.T) {
	score, risk, sources := Score(map[string]enrich.Result{})
	if score != 0 || risk != RiskLow || len(sources) != 0 {
		t.Errorf("got (%d, %s, %v), want (0, low, [])", score, risk, sources)
	}
}

func TestScoreDetectionCap(t *testing.T) {
	results := map[string]enrich.Result{
		enrich.SourceVirusTotal: enrich.Reputation{Detections: 40},
	}
	score, risk, _ := Score(results)
	if score != 50 {
		t.Errorf("score = %d, want 50 (capped)", score)
	}
	if risk != RiskHigh {
		t.Errorf("risk = %s, want high", risk)
	}
}

func TestScoreRegistrarBonus(t *testing.T) {
	results := map[string]enrich.Result{
		enrich.SourceVirusTotal:     enrich.Reputation{Detections: 13},
		enrich.SourceSecurityTrails: enrich.DNSHistory{Resolutions: 1},
		enrich.SourceWhois:          enrich.Whois{Registrar: "MarkMonitor Inc.", Emails: 0},
	}
	score, risk, _ := Score(results)
	// min(13*5,50) + 10 + 5 = 65
	if score != 65 {
		t.Errorf("score = %d, want 65", score)
	}
	if risk != RiskHigh {
		t.Errorf("risk = %s, want high", risk)
	}
}

func TestScoreDeterministic(t *testing.T) {
	results := map[string]enrich.Result{
		enrich.SourceVirusTotal:     enrich.Reputation{Detections: 3},
		enrich.SourceSecurityTrails: enrich.DNSHistory{Resolutions: 1},
		enrich.SourceWhois:          enrich.Whois{Registrar: "GoDaddy", Emails: 2},
	}

	s1, r1, src1 := Score(results)
	for i := 0; i < 10; i++ {
		s2, r2, src2 := Score(results)
		if s1 != s2 || r1 != r2 || !reflect.DeepEqual(src1, src2) {
			t.Fatalf("run %d differs: (%d,%s,%v) vs (%d,%s,%v)", i, s1, r1, src1, s2, r2, src2)
		}
	}
}
