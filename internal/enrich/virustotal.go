package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const vtBaseURL = "https://www.virustotal.com"

// VirusTotalClient is the reputation provider. It reports how many
// engines flag the indicator as malicious.
type VirusTotalClient struct {
	APIKey     string
	BaseURL    string
	httpClient *http.Client
}

// vtResponse mirrors the slice of the v3 object we care about. The rest
// of the upstream schema stays private to this file.
type vtResponse struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious int `json:"malicious"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

func NewVirusTotalClient(apiKey string) *VirusTotalClient {
	return &VirusTotalClient{
		APIKey:  apiKey,
		BaseURL: vtBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *VirusTotalClient) Name() string { return SourceVirusTotal }

func (c *VirusTotalClient) Lookup(ctx context.Context, ioc string, iocType IOCType) Result {
	if c.APIKey == "" {
		return Skipped{Source: c.Name()}
	}

	collection, guiPath := "domains", "domain"
	if iocType == IOCTypeIP {
		collection, guiPath = "ip_addresses", "ip-address"
	}
	url := fmt.Sprintf("%s/api/v3/%s/%s", c.BaseURL, collection, ioc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failure{Source: c.Name(), Reason: err.Error()}
	}
	req.Header.Set("x-apikey", c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failure{Source: c.Name(), Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failure{Source: c.Name(), Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var payload vtResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Failure{Source: c.Name(), Reason: "malformed response: " + err.Error()}
	}

	return Reputation{
		Detections: payload.Data.Attributes.LastAnalysisStats.Malicious,
		Reference:  fmt.Sprintf("https://www.virustotal.com/gui/%s/%s", guiPath, ioc),
	}
}
