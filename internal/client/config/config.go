// Package config loads runtime configuration for the chat client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via the -c or -config flags.
//  3. Command-line flags, which override earlier values.
package config

// Config holds runtime settings for the chat client.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - CacheDSN: SQLite DSN for the local session cache.
//   - Language: default answer language ("english" or "hindi").
type Config struct {
	ServerURL string
	CacheDSN  string
	Language  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.CacheDSN = "askgita.db"
	c.Language = "english"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
