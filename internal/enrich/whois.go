package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const whoisBaseURL = "https://api.hunter.io"

// WhoisClient is the WHOIS/OSINT provider. It reports registrar
// presence and how many email addresses are tied to the domain.
type WhoisClient struct {
	APIKey     string
	BaseURL    string
	httpClient *http.Client
}

type whoisResponse struct {
	Registrar string            `json:"registrar"`
	Emails    []json.RawMessage `json:"emails"`
}

func NewWhoisClient(apiKey string) *WhoisClient {
	return &WhoisClient{
		APIKey:  apiKey,
		BaseURL: whoisBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *WhoisClient) Name() string { return SourceWhois }

func (c *WhoisClient) Lookup(ctx context.Context, ioc string, _ IOCType) Result {
	if c.APIKey == "" {
		return Skipped{Source: c.Name()}
	}

	query := url.Values{}
	query.Set("domain", ioc)
	query.Set("api_key", c.APIKey)
	endpoint := fmt.Sprintf("%s/v2/domain-search?%s", c.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failure{Source: c.Name(), Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failure{Source: c.Name(), Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failure{Source: c.Name(), Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var payload whoisResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Failure{Source: c.Name(), Reason: "malformed response: " + err.Error()}
	}

	return Whois{
		Registrar: payload.Registrar,
		Emails:    len(payload.Emails),
	}
}
