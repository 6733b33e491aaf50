package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pynezz/pynezzentials/ansi"

	"gopkg.in/yaml.v3"
)

// Cfg holds the full service configuration. Non-secret values come from
// the YAML file; provider credentials and the API key are overlaid from
// the environment so the file can be committed without secrets.
//
// The config watcher rewrites the fields at runtime, so anything read
// on the request path goes through the accessor methods below, which
// take the lock that Reload holds while swapping.
type Cfg struct {
	mu sync.RWMutex

	Network struct {
		Port         int `yaml:"port,omitempty"`
		ReadTimeout  int `yaml:"read_timeout,omitempty"`
		WriteTimeout int `yaml:"write_timeout,omitempty"`
	} `yaml:"network"`
	Database struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"database"`
	Auth struct {
		APIKey       string `yaml:"api_key,omitempty"`
		JWTSecret    string `yaml:"jwt_secret,omitempty"`
		TokenMinutes int    `yaml:"token_minutes,omitempty"`
	} `yaml:"auth"`
	Enrichment struct {
		TimeoutSeconds    int    `yaml:"timeout_seconds,omitempty"`
		VirusTotalKey     string `yaml:"-"`
		SecurityTrailsKey string `yaml:"-"`
		HunterKey         string `yaml:"-"`
	} `yaml:"enrichment"`
}

// LoadConfig loads the configuration from the given path and fills in
// defaults and environment overrides.
func LoadConfig(path string) (*Cfg, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		ansi.PrintError("Failed to load configuration file: " + path)
		return nil, err
	}

	var cfg Cfg
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	ansi.PrintSuccess(fmt.Sprintf("Loaded configuration file: %s", path))
	return &cfg, nil
}

// Reload re-reads the file at path into the receiver. Used by the
// config watcher so credential rotation doesn't require a restart.
func (c *Cfg) Reload(path string) error {
	fresh, err := LoadConfig(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Network = fresh.Network
	c.Database = fresh.Database
	c.Auth = fresh.Auth
	c.Enrichment = fresh.Enrichment
	return nil
}

// APIKey returns the configured API key.
func (c *Cfg) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Auth.APIKey
}

// JWTSecret returns the token signing secret.
func (c *Cfg) JWTSecret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Auth.JWTSecret
}

// TokenTTL returns the lifetime of issued tokens.
func (c *Cfg) TokenTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.Auth.TokenMinutes) * time.Minute
}

// ProviderCredentials returns the enrichment provider keys.
func (c *Cfg) ProviderCredentials() (vt, st, hunter string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Enrichment.VirusTotalKey, c.Enrichment.SecurityTrailsKey, c.Enrichment.HunterKey
}

// EnrichTimeout returns the per-batch enrichment deadline.
func (c *Cfg) EnrichTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.Enrichment.TimeoutSeconds) * time.Second
}

func (c *Cfg) applyDefaults() {
	if c.Network.Port == 0 {
		c.Network.Port = 8000
	}
	if c.Network.ReadTimeout == 0 {
		c.Network.ReadTimeout = 10
	}
	if c.Network.WriteTimeout == 0 {
		c.Network.WriteTimeout = 10
	}
	if c.Database.Path == "" {
		c.Database.Path = "assessments.db"
	}
	if c.Auth.TokenMinutes == 0 {
		c.Auth.TokenMinutes = 60
	}
	if c.Enrichment.TimeoutSeconds == 0 {
		c.Enrichment.TimeoutSeconds = 10
	}
}

// applyEnv overlays secrets from the environment. The .env file (if
// any) is loaded into the environment by the caller before this runs.
func (c *Cfg) applyEnv() {
	if v := os.Getenv("API_KEY"); v != "" {
		c.Auth.APIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("VT_API_KEY"); v != "" {
		c.Enrichment.VirusTotalKey = v
	}
	if v := os.Getenv("SECURITYTRAILS_API_KEY"); v != "" {
		c.Enrichment.SecurityTrailsKey = v
	}
	if v := os.Getenv("HUNTER_API_KEY"); v != "" {
		c.Enrichment.HunterKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Network.Port = p
		}
	}
}
