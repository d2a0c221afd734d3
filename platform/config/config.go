// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings for the audit store.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsAuditEnabled() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// CMSConfig provides settings for the headless CMS (Strapi) client.
type CMSConfig interface {
	GetCMSBaseURL() string
	GetCMSAPIToken() string
	GetCMSTimeout() time.Duration
}

// CommerceSite describes one WooCommerce storefront instance.
type CommerceSite struct {
	Name           string
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
}

// CommerceConfig provides settings for the storefront commerce clients.
type CommerceConfig interface {
	GetCommerceSites() []CommerceSite
	GetCommerceTimeout() time.Duration
}

// CacheConfig provides settings for the resolver cache.
type CacheConfig interface {
	GetRedisURL() string
	GetResolverCacheTTL() time.Duration
	IsResolverCacheEnabled() bool
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketImportArchive() string
	IsMinIOEnabled() bool
}

// ImportConfig provides settings for spreadsheet imports.
type ImportConfig interface {
	GetImportReadTimeout() time.Duration
	GetImportMaxFileSize() int64
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	CMSBaseURL               string
	CMSAPIToken              string
	CMSTimeout               time.Duration
	CommerceSites            []CommerceSite
	CommerceTimeout          time.Duration
	RedisURL                 string
	ResolverCacheTTL         time.Duration
	DatabaseURL              string
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinioBucketImportArchive string
	ImportReadTimeout        time.Duration
	ImportMaxFileSize        int64
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) IsAuditEnabled() bool   { return c.DatabaseURL != "" }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// CMSConfig implementation
func (c *Config) GetCMSBaseURL() string        { return c.CMSBaseURL }
func (c *Config) GetCMSAPIToken() string       { return c.CMSAPIToken }
func (c *Config) GetCMSTimeout() time.Duration { return c.CMSTimeout }

// CommerceConfig implementation
func (c *Config) GetCommerceSites() []CommerceSite  { return c.CommerceSites }
func (c *Config) GetCommerceTimeout() time.Duration { return c.CommerceTimeout }

// CacheConfig implementation
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetResolverCacheTTL() time.Duration { return c.ResolverCacheTTL }
func (c *Config) IsResolverCacheEnabled() bool       { return c.RedisURL != "" }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketImportArchive() string {
	return c.MinioBucketImportArchive
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// ImportConfig implementation
func (c *Config) GetImportReadTimeout() time.Duration { return c.ImportReadTimeout }
func (c *Config) GetImportMaxFileSize() int64         { return c.ImportMaxFileSize }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	sites, err := loadCommerceSites()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		CMSBaseURL:               strings.TrimRight(getEnv("STRAPI_URL", ""), "/"),
		CMSAPIToken:              getEnv("STRAPI_API_TOKEN", ""),
		CMSTimeout:               mustDuration(getEnv("STRAPI_TIMEOUT", "15s")),
		CommerceSites:            sites,
		CommerceTimeout:          mustDuration(getEnv("WOO_TIMEOUT", "20s")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		ResolverCacheTTL:         mustDuration(getEnv("RESOLVER_CACHE_TTL", "10m")),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketImportArchive: getEnv("MINIO_BUCKET_IMPORT_ARCHIVE", "import-archive"),
		ImportReadTimeout:        mustDuration(getEnv("IMPORT_READ_TIMEOUT", "30s")),
		ImportMaxFileSize:        mustInt64(getEnv("IMPORT_MAX_FILE_SIZE", "10485760")),
	}

	if cfg.CMSBaseURL == "" {
		return nil, fmt.Errorf("STRAPI_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// loadCommerceSites reads WOO_SITES (comma-separated site names) and per-site
// WOO_<NAME>_URL / WOO_<NAME>_KEY / WOO_<NAME>_SECRET variables.
func loadCommerceSites() ([]CommerceSite, error) {
	names := splitCSV(getEnv("WOO_SITES", ""))
	sites := make([]CommerceSite, 0, len(names))

	for _, name := range names {
		envName := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		site := CommerceSite{
			Name:           name,
			BaseURL:        strings.TrimRight(getEnv("WOO_"+envName+"_URL", ""), "/"),
			ConsumerKey:    getEnv("WOO_"+envName+"_KEY", ""),
			ConsumerSecret: getEnv("WOO_"+envName+"_SECRET", ""),
		}
		if site.BaseURL == "" || site.ConsumerKey == "" || site.ConsumerSecret == "" {
			return nil, fmt.Errorf("commerce site %q is missing WOO_%s_URL/KEY/SECRET", name, envName)
		}
		sites = append(sites, site)
	}

	return sites, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
