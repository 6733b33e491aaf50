package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/pynezz/nauthiz/internal/config"
	"github.com/pynezz/nauthiz/internal/database/models"
	"github.com/pynezz/nauthiz/internal/database/stores"
	"github.com/pynezz/nauthiz/internal/enrich"
	"github.com/pynezz/nauthiz/internal/middleware"
	"github.com/pynezz/nauthiz/internal/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pynezz/pynezzentials/ansi"
)

var ErrInvalidIOC = errors.New("invalid IOC format (3-255 chars)")

type handlers struct {
	cfg   *config.Cfg
	store *stores.AssessmentStore
	orch  *enrich.Orchestrator
	feed  *Feed
}

// QueryRequest is the enrichment request body. An omitted type tag
// defaults to domain.
type QueryRequest struct {
	IOC     string `json:"ioc"`
	IOCType string `json:"ioc_type"`
}

// QueryResponse is the enriched assessment as returned to the caller.
type QueryResponse struct {
	QueryID   string          `json:"query_id"`
	IOC       string          `json:"ioc"`
	IOCType   string          `json:"ioc_type"`
	Score     int             `json:"score"`
	RiskLevel string          `json:"risk_level"`
	Sources   []string        `json:"sources"`
	VT        json.RawMessage `json:"vt,omitempty"`
	ST        json.RawMessage `json:"st,omitempty"`
	Whois     json.RawMessage `json:"whois,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// SummaryResponse is one stored assessment without the raw payloads.
// History entries share the shape.
type SummaryResponse struct {
	IOC       string   `json:"ioc"`
	IOCType   string   `json:"ioc_type"`
	Score     int      `json:"score"`
	RiskLevel string   `json:"risk_level"`
	Sources   []string `json:"sources"`
	CreatedAt string   `json:"created_at"`
}

func validateIOC(ioc string) error {
	if len(ioc) < 3 || len(ioc) > 255 {
		return ErrInvalidIOC
	}
	return nil
}

// query runs the full pipeline: validate, enrich concurrently, score,
// append, respond. Provider failures and a batch timeout degrade to a
// zero score; only validation and persistence fail the request.
func (h *handlers) query(c *fiber.Ctx) error {
	payload := new(QueryRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "malformed request body"})
	}

	ioc := strings.TrimSpace(payload.IOC)
	if err := validateIOC(ioc); err != nil {
		ansi.PrintWarning("Invalid IOC format: " + ioc)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}
	iocType, ok := enrich.ParseIOCType(payload.IOCType)
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "ioc_type must be one of ip, domain, hash"})
	}

	ansi.PrintInfo("Querying " + string(iocType) + ": " + ioc)

	start := time.Now()
	results := h.orch.Enrich(c.UserContext(), ioc, iocType)
	ansi.PrintInfo("Enrichment completed in " + time.Since(start).Round(time.Millisecond).String())

	score, riskLevel, sources := scoring.Score(results)

	a := &models.Assessment{
		QueryID:   uuid.NewString(),
		IOC:       ioc,
		IOCType:   string(iocType),
		Score:     score,
		RiskLevel: string(riskLevel),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.SetSources(sources); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}
	a.VT = rawResult(results, enrich.SourceVirusTotal)
	a.ST = rawResult(results, enrich.SourceSecurityTrails)
	a.Whois = rawResult(results, enrich.SourceWhois)

	if err := h.store.Append(a); err != nil {
		ansi.PrintError("Failed to persist assessment for " + ioc + ": " + err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	resp := QueryResponse{
		QueryID:   a.QueryID,
		IOC:       a.IOC,
		IOCType:   a.IOCType,
		Score:     a.Score,
		RiskLevel: a.RiskLevel,
		Sources:   sources,
		VT:        rawMessage(a.VT),
		ST:        rawMessage(a.ST),
		Whois:     rawMessage(a.Whois),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}

	h.feed.Publish(resp)

	return c.JSON(resp)
}

// summary returns the latest assessment for the indicator.
func (h *handlers) summary(c *fiber.Ctx) error {
	ioc := strings.TrimSpace(c.Params("ioc"))

	a, err := h.store.Latest(ioc)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "IOC not found"})
		}
		ansi.PrintError("Summary lookup failed for " + ioc + ": " + err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	return c.JSON(summaryOf(a))
}

// history returns all stored assessments, most recent first.
func (h *handlers) history(c *fiber.Ctx) error {
	ioc := strings.TrimSpace(c.Params("ioc"))
	limit := c.QueryInt("limit", 0)

	rows, err := h.store.History(ioc, limit)
	if err != nil {
		ansi.PrintError("History lookup failed for " + ioc + ": " + err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}
	if len(rows) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "IOC not found"})
	}

	entries := make([]SummaryResponse, 0, len(rows))
	for i := range rows {
		entries = append(entries, summaryOf(&rows[i]))
	}
	return c.JSON(entries)
}

// timeline returns the activity narrative, oldest first, with the
// phase and burned flag re-derived over the stored sequence.
func (h *handlers) timeline(c *fiber.Ctx) error {
	ioc := strings.TrimSpace(c.Params("ioc"))
	limit := c.QueryInt("limit", 0)

	points, err := h.store.TimelinePoints(ioc, limit)
	if err != nil {
		ansi.PrintError("Timeline lookup failed for " + ioc + ": " + err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}
	if len(points) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "IOC not found"})
	}

	return c.JSON(points)
}

// token exchanges a valid API key for a short-lived bearer token.
func (h *handlers) token(c *fiber.Ctx) error {
	apiKey := c.Get("X-API-Key")
	if !middleware.KeysMatch(apiKey, h.cfg.APIKey()) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid API key"})
	}

	ttl := h.cfg.TokenTTL()
	signed, err := middleware.GenerateToken("api-client", h.cfg.JWTSecret(), ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	return c.JSON(fiber.Map{"token": signed, "expires_in": int(ttl.Seconds())})
}

// index handles the root path.
func (h *handlers) index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Nauthiz API", "status": "online"})
}

func summaryOf(a *models.Assessment) SummaryResponse {
	return SummaryResponse{
		IOC:       a.IOC,
		IOCType:   a.IOCType,
		Score:     a.Score,
		RiskLevel: a.RiskLevel,
		Sources:   a.SourceList(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// rawResult serializes a successful provider result for storage.
// Failed and skipped providers leave the column empty.
func rawResult(results map[string]enrich.Result, name string) string {
	r, ok := results[name]
	if !ok || !r.Successful() {
		return ""
	}
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(data)
}

func rawMessage(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
