package models

import (
	"encoding/json"
	"time"
)

// Assessment is one immutable point-in-time verdict for an indicator.
// Rows are only ever appended; history and timeline views are read
// straight off this log. Sources and the per-provider payloads are
// stored JSON-encoded so they round-trip exactly.
type Assessment struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	QueryID string `json:"query_id"`

	IOC       string `gorm:"index" json:"ioc"`
	IOCType   string `json:"ioc_type"`
	Score     int    `json:"score"`
	RiskLevel string `json:"risk_level"`

	Sources string `json:"-"` // JSON-encoded []string
	VT      string `json:"-"` // JSON-encoded normalized reputation result, empty when absent
	ST      string `json:"-"` // JSON-encoded normalized passive-DNS result
	Whois   string `json:"-"` // JSON-encoded normalized WHOIS/OSINT result

	FirstSeenGlobal time.Time `json:"first_seen_global"`
	LastUpdated     time.Time `json:"last_updated"`
	BurnedInfra     bool      `json:"burned_infra"`
	ActivityPhase   string    `json:"activity_phase"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// SetSources stores the contributing source list JSON-encoded.
func (a *Assessment) SetSources(sources []string) error {
	if sources == nil {
		sources = []string{}
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	a.Sources = string(data)
	return nil
}

// SourceList decodes the stored source list. A row written before any
// source contributed decodes to an empty list, never nil.
func (a *Assessment) SourceList() []string {
	sources := []string{}
	if a.Sources == "" {
		return sources
	}
	if err := json.Unmarshal([]byte(a.Sources), &sources); err != nil {
		return []string{}
	}
	return sources
}

// Detections reads the detection count out of the persisted reputation
// payload. Rows without a successful reputation result count as zero.
func (a *Assessment) Detections() int {
	if a.VT == "" {
		return 0
	}
	var payload struct {
		Detections int `json:"detections"`
	}
	if err := json.Unmarshal([]byte(a.VT), &payload); err != nil {
		return 0
	}
	return payload.Detections
}
