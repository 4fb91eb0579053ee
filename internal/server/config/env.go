package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// malformed variables leave the current value untouched.
//
// Recognized variables:
//
//	HTTP_ADDR                    bind address
//	DATABASE_URL                 PostgreSQL DSN
//	JWT_SECRET_KEY               token signing key
//	JWT_ALGORITHM                HS256 / HS384 / HS512
//	ACCESS_TOKEN_EXPIRE_MINUTES  token and cookie lifetime, minutes
//	S3_ACCESS_KEY / S3_SECRET_KEY / S3_REGION / S3_BASE_ENDPOINT
//	UPLOAD_BUCKET / THUMBNAIL_BUCKET
//	MAX_UPLOAD_SIZE_BYTES        upload ceiling
//	ALLOW_ORIGINS                comma-separated CORS origins
//	IS_DEBUG                     "true"/"1" enables debug endpoints
func parseEnv(config *Config) {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	setString("HTTP_ADDR", &config.HTTPAddr)
	setString("DATABASE_URL", &config.DatabaseDSN)
	setString("JWT_SECRET_KEY", &config.JWTSecretKey)
	setString("JWT_ALGORITHM", &config.JWTAlgorithm)
	setString("S3_ACCESS_KEY", &config.S3AccessKey)
	setString("S3_SECRET_KEY", &config.S3SecretKey)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("UPLOAD_BUCKET", &config.UploadBucket)
	setString("THUMBNAIL_BUCKET", &config.ThumbnailBucket)

	if v, ok := os.LookupEnv("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			config.AccessTokenTTL = time.Duration(minutes) * time.Minute
		}
	}

	if v, ok := os.LookupEnv("MAX_UPLOAD_SIZE_BYTES"); ok {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil && size > 0 {
			config.MaxUploadSizeBytes = size
		}
	}

	if v, ok := os.LookupEnv("ALLOW_ORIGINS"); ok && v != "" {
		origins := []string{}
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			config.AllowOrigins = origins
		}
	}

	if v, ok := os.LookupEnv("IS_DEBUG"); ok {
		if debug, err := strconv.ParseBool(v); err == nil {
			config.Debug = debug
		}
	}
}
