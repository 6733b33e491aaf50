package stores

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pynezz/nauthiz/internal/database/models"
	"github.com/pynezz/nauthiz/internal/scoring"

	"github.com/pynezz/pynezzentials/ansi"
)

var (
	ErrNotFound         = errors.New("no assessment found for indicator")
	ErrInvalidScore     = errors.New("score out of range [0,100]")
	ErrInvalidRiskLevel = errors.New("unknown risk level")
)

// DefaultPageSize caps history and timeline reads so a hot indicator
// can't produce unbounded result sets.
const DefaultPageSize = 50

// AssessmentStore is the append-only log of assessments, keyed by the
// IOC string. Rows are never updated or deleted; every view is a query
// over the log.
type AssessmentStore struct {
	db   *gorm.DB
	name string
}

func NewAssessmentStore(db *gorm.DB) (*AssessmentStore, error) {
	ansi.PrintInfo("Initializing " + models.ASSESSMENTS + " store...")
	if err := db.AutoMigrate(&models.Assessment{}); err != nil {
		return nil, err
	}
	return &AssessmentStore{db: db, name: models.ASSESSMENTS}, nil
}

func (s *AssessmentStore) Name() string {
	return s.name
}

// Append inserts a new immutable row. Score and risk level are checked
// here so invalid data never reaches disk, whatever the engine. The
// temporal columns (first seen, phase, burned) are derived from the
// indicator's stored history before the write.
func (s *AssessmentStore) Append(a *models.Assessment) error {
	if a.Score < 0 || a.Score > 100 {
		return ErrInvalidScore
	}
	if !scoring.ValidRiskLevel(a.RiskLevel) {
		return ErrInvalidRiskLevel
	}
	if a.Sources == "" {
		if err := a.SetSources(nil); err != nil {
			return err
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.LastUpdated = a.CreatedAt

	prior, err := s.chronological(a.IOC, 0)
	if err != nil {
		return err
	}

	a.FirstSeenGlobal = a.CreatedAt
	if len(prior) > 0 {
		a.FirstSeenGlobal = prior[0].CreatedAt
	}

	entries := append(TimelineEntries(prior), scoring.TimelineEntry{
		Timestamp:  a.CreatedAt,
		Score:      a.Score,
		Risk:       scoring.RiskLevel(a.RiskLevel),
		Detections: a.Detections(),
	})
	points := scoring.DeriveTimeline(entries)
	last := points[len(points)-1]
	a.ActivityPhase = string(last.Phase)
	a.BurnedInfra = last.Burned

	return s.db.Create(a).Error
}

// Latest returns the most recent assessment for the indicator.
func (s *AssessmentStore) Latest(ioc string) (*models.Assessment, error) {
	var a models.Assessment
	result := s.db.Where("ioc = ?", ioc).Order("created_at DESC, id DESC").First(&a)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &a, nil
}

// History returns assessments most-recent-first, bounded by limit.
// Limits outside (0, DefaultPageSize] are clamped to the default.
func (s *AssessmentStore) History(ioc string, limit int) ([]models.Assessment, error) {
	var rows []models.Assessment
	result := s.db.Where("ioc = ?", ioc).
		Order("created_at DESC, id DESC").
		Limit(clampLimit(limit)).
		Find(&rows)
	return rows, result.Error
}

// Timeline returns the same rows as History but chronological
// (oldest-first), the order an activity narrative reads in.
func (s *AssessmentStore) Timeline(ioc string, limit int) ([]models.Assessment, error) {
	rows, err := s.History(ioc, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// TimelinePoints derives the activity timeline over the indicator's
// full stored sequence, then returns only the most recent points,
// bounded the same way History is. Deriving before truncating keeps
// phase and burned consistent with the stored columns no matter how
// deep the history runs.
func (s *AssessmentStore) TimelinePoints(ioc string, limit int) ([]scoring.TimelinePoint, error) {
	rows, err := s.chronological(ioc, 0)
	if err != nil {
		return nil, err
	}
	points := scoring.DeriveTimeline(TimelineEntries(rows))
	if n := clampLimit(limit); len(points) > n {
		points = points[len(points)-n:]
	}
	return points, nil
}

// chronological fetches the full stored sequence oldest-first. A limit
// of 0 means unbounded: Append and TimelinePoints use that to work
// over everything on file.
func (s *AssessmentStore) chronological(ioc string, limit int) ([]models.Assessment, error) {
	var rows []models.Assessment
	q := s.db.Where("ioc = ?", ioc).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	result := q.Find(&rows)
	return rows, result.Error
}

// TimelineEntries projects stored rows into the derivation input.
func TimelineEntries(rows []models.Assessment) []scoring.TimelineEntry {
	entries := make([]scoring.TimelineEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, scoring.TimelineEntry{
			Timestamp:  r.CreatedAt,
			Score:      r.Score,
			Risk:       scoring.RiskLevel(r.RiskLevel),
			Detections: r.Detections(),
		})
	}
	return entries
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultPageSize {
		return DefaultPageSize
	}
	return limit
}
