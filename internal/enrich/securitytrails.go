package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const stBaseURL = "https://api.securitytrails.com"

// SecurityTrailsClient is the passive-DNS provider. It reports how many
// DNS records are on file for the indicator.
type SecurityTrailsClient struct {
	APIKey     string
	BaseURL    string
	httpClient *http.Client
}

type stResponse struct {
	Records []json.RawMessage `json:"records"`
}

func NewSecurityTrailsClient(apiKey string) *SecurityTrailsClient {
	return &SecurityTrailsClient{
		APIKey:  apiKey,
		BaseURL: stBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *SecurityTrailsClient) Name() string { return SourceSecurityTrails }

func (c *SecurityTrailsClient) Lookup(ctx context.Context, ioc string, _ IOCType) Result {
	if c.APIKey == "" {
		return Skipped{Source: c.Name()}
	}

	url := fmt.Sprintf("%s/v1/domain/%s/dns", c.BaseURL, ioc)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failure{Source: c.Name(), Reason: err.Error()}
	}
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failure{Source: c.Name(), Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failure{Source: c.Name(), Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var payload stResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Failure{Source: c.Name(), Reason: "malformed response: " + err.Error()}
	}

	return DNSHistory{Resolutions: len(payload.Records)}
}
