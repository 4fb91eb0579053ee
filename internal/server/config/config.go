// Package config handles configuration for the server: development
// defaults, overlaid by environment variables, overlaid by command-line
// flags.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds runtime settings for the Filekeeper server.
//
// Fields:
//   - HTTPAddr: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - JWTSecretKey / JWTAlgorithm: HMAC secret and algorithm for signing
//     access tokens. Do not use test defaults in prod.
//   - AccessTokenTTL: access token (and session cookie) lifetime.
//   - S3AccessKey / S3SecretKey / S3Region / S3BaseEndpoint: object storage
//     connection settings.
//   - UploadBucket / ThumbnailBucket: where originals and previews live.
//   - MaxUploadSizeBytes: upload request body ceiling.
//   - AllowOrigins: CORS origins allowed to send credentials.
//   - Debug: gates the config introspection endpoint.
type Config struct {
	HTTPAddr           string
	DatabaseDSN        string
	JWTSecretKey       string
	JWTAlgorithm       string
	AccessTokenTTL     time.Duration
	S3AccessKey        string
	S3SecretKey        string
	S3Region           string
	S3BaseEndpoint     string
	UploadBucket       string
	ThumbnailBucket    string
	MaxUploadSizeBytes int64
	AllowOrigins       []string
	Debug              bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.DatabaseDSN = ""
	c.JWTSecretKey = ""
	c.JWTAlgorithm = "HS256"
	c.AccessTokenTTL = 24 * time.Hour
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.UploadBucket = "uploads"
	c.ThumbnailBucket = "thumbnails"
	c.MaxUploadSizeBytes = 50 * 1024 * 1024
	c.AllowOrigins = []string{"http://localhost:5173"}
	c.Debug = false
}

// Validate checks the settings the process cannot run without. Failing here
// makes a misconfigured deployment a startup-time fatal error instead of a
// first-request surprise.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.JWTSecretKey == "" {
		return errors.New("config: JWT_SECRET_KEY is required")
	}
	if !strings.HasPrefix(c.JWTAlgorithm, "HS") {
		return errors.New("config: JWT_ALGORITHM must be an HMAC algorithm (HS256, HS384, HS512)")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("config: access token TTL must be positive")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from environment variables and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
