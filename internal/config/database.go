package config

import (
	"fmt"
	"net/url"
	"strings"
)

// DatabaseConfig is the subset of Config needed to reach Postgres. The migration
// command loads only this part.
type DatabaseConfig struct {
	URL string
	// DisablePreparedBinary asks lib/pq to skip binary results of unnamed prepared
	// statements, which transaction poolers do not keep between statements.
	DisablePreparedBinary bool
}

func (c Config) Database() DatabaseConfig {
	return DatabaseConfig{URL: c.DBURL, DisablePreparedBinary: c.DBDisablePreparedBinary}
}

func LoadDatabase() (DatabaseConfig, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return DatabaseConfig{}, err
	}
	disable, err := getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true)
	if err != nil {
		return DatabaseConfig{}, err
	}
	cfg := DatabaseConfig{
		URL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DisablePreparedBinary: disable,
	}
	if cfg.URL == "" {
		return DatabaseConfig{}, fmt.Errorf("DB_URL is required")
	}
	return cfg, nil
}

// DSN returns URL with disable_prepared_binary_result=yes appended when enabled and
// not already set. Key/value style DSNs are returned as is.
func (c DatabaseConfig) DSN() string {
	if !c.DisablePreparedBinary {
		return c.URL
	}

	parsed, err := url.Parse(c.URL)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return c.URL
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

// Name extracts the database name from either a URL or a key/value DSN.
func (c DatabaseConfig) Name() string {
	trimmed := strings.TrimSpace(c.URL)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(token, "dbname=")), `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
