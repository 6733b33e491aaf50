/* scoring maps normalized provider results to a 0-100 score and a
   coarse risk tier. Pure functions only: same results in, same score
   out, every time. */

package scoring

import "github.com/pynezz/nauthiz/internal/enrich"

// RiskLevel is the coarse bucket derived from the numeric score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ValidRiskLevel reports whether s is one of the four tiers.
func ValidRiskLevel(s string) bool {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Fixed weights. The reputation provider dominates, capped at half the
// scale so corroborating sources still matter.
const (
	detectionWeight = 5
	detectionCap    = 50
	resolutionBonus = 10
	registrarBonus  = 5
)

// sourceOrder fixes the order sources are credited in, independent of
// provider completion order.
var sourceOrder = []string{
	enrich.SourceVirusTotal,
	enrich.SourceSecurityTrails,
	enrich.SourceWhois,
}

// Score reduces a provider result map to (score, risk tier, sources).
// Every successful provider is credited as a source even when its
// fields add nothing to the score. Failed and skipped providers add
// nothing and are not credited.
func Score(results map[string]enrich.Result) (int, RiskLevel, []string) {
	score := 0
	sources := []string{}

	for _, name := range sourceOrder {
		r, ok := results[name]
		if !ok || !r.Successful() {
			continue
		}
		sources = append(sources, name)

		switch v := r.(type) {
		case enrich.Reputation:
			points := v.Detections * detectionWeight
			if points > detectionCap {
				points = detectionCap
			}
			score += points
		case enrich.DNSHistory:
			if v.Resolutions >= 1 {
				score += resolutionBonus
			}
		case enrich.Whois:
			if v.Registrar != "" {
				score += registrarBonus
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, Classify(score), sources
}

// Classify maps a score to its risk tier. The tiers partition [0,100]:
// each boundary is inclusive on the lower bound.
func Classify(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}
