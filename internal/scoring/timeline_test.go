package scoring

import (
	"testing"
	"time"
)

func entryAt(t0 time.Time, offset time.Duration, detections int) TimelineEntry {
	return TimelineEntry{
		Timestamp:  t0.Add(offset),
		Score:      detections * 5,
		Risk:       Classify(detections * 5),
		Detections: detections,
	}
}

func TestDeriveTimelinePhases(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []TimelineEntry{
		entryAt(t0, 0, 5),                // first sighting
		entryAt(t0, 2*24*time.Hour, 5),   // 2d gap
		entryAt(t0, 16*24*time.Hour, 5),  // 14d gap
		entryAt(t0, 60*24*time.Hour, 5),  // 44d gap
		entryAt(t0, 61*24*time.Hour, 5),  // 1d gap
	}

	points := DeriveTimeline(entries)
	if len(points) != len(entries) {
		t.Fatalf("got %d points, want %d", len(points), len(entries))
	}

	wantPhases := []Phase{PhaseActive, PhaseActive, PhaseDormant, PhaseResurrected, PhaseActive}
	for i, want := range wantPhases {
		if points[i].Phase != want {
			t.Errorf("point %d phase = %s, want %s", i, points[i].Phase, want)
		}
	}
}

func TestDeriveTimelineBurned(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []TimelineEntry{
		entryAt(t0, 0, 4),
		entryAt(t0, 24*time.Hour, 0),
		entryAt(t0, 48*time.Hour, 0),
		entryAt(t0, 72*time.Hour, 0), // third consecutive clean assessment
		entryAt(t0, 96*time.Hour, 2), // detections return
	}

	points := DeriveTimeline(entries)

	wantBurned := []bool{false, false, false, true, false}
	for i, want := range wantBurned {
		if points[i].Burned != want {
			t.Errorf("point %d burned = %v, want %v", i, points[i].Burned, want)
		}
	}
}

func TestDeriveTimelineShortSequenceNeverBurned(t *testing.T) {
	t0 := time.Now().UTC()
	entries := []TimelineEntry{
		entryAt(t0, 0, 0),
		entryAt(t0, time.Hour, 0),
	}

	for _, p := range DeriveTimeline(entries) {
		if p.Burned {
			t.Errorf("burned flag set with fewer assessments than the window")
		}
	}
}

func TestDeriveTimelineEmpty(t *testing.T) {
	if points := DeriveTimeline(nil); len(points) != 0 {
		t.Errorf("got %d points for empty input", len(points))
	}
}

func TestDeriveTimelineCarriesScores(t *testing.T) {
	t0 := time.Now().UTC()
	entries := []TimelineEntry{entryAt(t0, 0, 10)}
	points := DeriveTimeline(entries)
	if points[0].Score != 50 || points[0].RiskLevel != RiskHigh {
		t.Errorf("point = %+v, want score 50 risk high", points[0])
	}
	if !points[0].Timestamp.Equal(t0) {
		t.Errorf("timestamp = %v, want %v", points[0].Timestamp, t0)
	}
}
