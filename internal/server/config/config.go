// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the AskGita server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - MongoURI / MongoDatabase: document store holding users and chat history.
//   - RedisAddr / RedisPassword / RedisDB: verification codes and guest rate limits.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: bearer token lifetime.
//   - OTPValidityDuration: how long an emailed verification code stays valid.
//   - GuestRequestsPerMinute: per-IP chat limit for unauthenticated callers.
//   - LLMBaseURL / LLMAPIKey / LLMModel: OpenAI-compatible answer backend.
type Config struct {
	EndpointAddr                string
	MongoURI                    string
	MongoDatabase               string
	RedisAddr                   string
	RedisPassword               string
	RedisDB                     int
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	OTPValidityDuration         time.Duration
	GuestRequestsPerMinute      int
	LLMBaseURL                  string
	LLMAPIKey                   string
	LLMModel                    string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":5000"
	c.MongoURI = "mongodb://127.0.0.1:27017"
	c.MongoDatabase = "askgita"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPassword = ""
	c.RedisDB = 0
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.OTPValidityDuration = 10 * time.Minute
	c.GuestRequestsPerMinute = 10
	c.LLMBaseURL = "https://api.groq.com/openai/v1"
	c.LLMAPIKey = ""
	c.LLMModel = "deepseek-r1-distill-llama-70b"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
