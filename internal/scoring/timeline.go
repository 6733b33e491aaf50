package scoring

import "time"

// Phase classifies an indicator's infrastructure lifecycle from the
// spacing of its assessments.
type Phase string

const (
	PhaseActive      Phase = "active"
	PhaseDormant     Phase = "dormant"
	PhaseResurrected Phase = "resurrected"
)

// Gap thresholds between consecutive assessments. Under a week the
// infrastructure is considered continuously in use; over a month a
// reappearance counts as resurrection.
const (
	activeGap  = 7 * 24 * time.Hour
	dormantGap = 30 * 24 * time.Hour
)

// burnedWindow is how many consecutive detection-free assessments it
// takes to call infrastructure burned.
const burnedWindow = 3

// TimelineEntry is one assessment as the derivation sees it: when it
// happened, what it scored, and how many reputation detections it
// carried (zero when the reputation provider failed or was skipped).
type TimelineEntry struct {
	Timestamp  time.Time
	Score      int
	Risk       RiskLevel
	Detections int
}

// TimelinePoint is one derived point of the activity narrative.
type TimelinePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Phase     Phase     `json:"phase"`
	Burned    bool      `json:"burned"`
}

// DeriveTimeline turns an oldest-first assessment sequence into its
// activity timeline. The first sighting is active; after that the gap
// to the previous assessment decides the phase. An indicator is burned
// at a point when the burnedWindow most recent assessments up to and
// including it all came back detection-free.
func DeriveTimeline(entries []TimelineEntry) []TimelinePoint {
	points := make([]TimelinePoint, 0, len(entries))

	for i, e := range entries {
		phase := PhaseActive
		if i > 0 {
			gap := e.Timestamp.Sub(entries[i-1].Timestamp)
			switch {
			case gap < activeGap:
				phase = PhaseActive
			case gap < dormantGap:
				phase = PhaseDormant
			default:
				phase = PhaseResurrected
			}
		}

		points = append(points, TimelinePoint{
			Timestamp: e.Timestamp,
			Score:     e.Score,
			RiskLevel: e.Risk,
			Phase:     phase,
			Burned:    burnedAt(entries, i),
		})
	}

	return points
}

func burnedAt(entries []TimelineEntry, i int) bool {
	if i+1 < burnedWindow {
		return false
	}
	for j := i - burnedWindow + 1; j <= i; j++ {
		if entries[j].Detections > 0 {
			return false
		}
	}
	return true
}
