package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port             int
	LogLevel         string
	AllowedOrigins   []string
	CacheControl     string
	Bucket           string
	BucketPrefix     string
	S3Region         string
	S3Endpoint       string
	S3ForcePathStyle bool
	PublicHostname   string
	MetadataDB       string
	CacheType        string
	CacheMaxBytes    int64
	CacheTTLSeconds  int
	LegacyPbf        bool
}

func Load() *Config {
	cfg := &Config{
		Port:             getEnvInt("PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "")),
		CacheControl:     getEnv("CACHE_CONTROL", "public, max-age=86400"),
		Bucket:           getEnv("BUCKET", ""),
		BucketPrefix:     getEnv("BUCKET_PREFIX", ""),
		S3Region:         getEnv("S3_REGION", ""),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", false),
		PublicHostname:   getEnv("PUBLIC_HOSTNAME", ""),
		MetadataDB:       getEnv("METADATA_DB", "tilegate.db"),
		CacheType:        getEnv("CACHE", "memory"),
		CacheMaxBytes:    getEnvInt64("CACHE_MAX_BYTES", 268435456), // 256MB default
		CacheTTLSeconds:  getEnvInt("CACHE_TTL_SECONDS", 86400),
		LegacyPbf:        getEnvBool("LEGACY_PBF", true),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
