package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// SurrealDB
	SurrealURL  string
	SurrealNS   string
	SurrealDB   string
	SurrealUser string
	SurrealPass string

	// Session
	SessionMaxAge int

	// Snapshot
	RefreshInterval time.Duration

	// Rate Limit
	RateLimitGeneral   int
	RateLimitDocCreate int

	// Export
	HospitalName    string
	HospitalAddress string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.SurrealURL = os.Getenv("SURREALDB_URL")
	if cfg.SurrealURL == "" {
		missing = append(missing, "SURREALDB_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SurrealNS = getEnvString("SURREALDB_NS", "karteflow")
	cfg.SurrealDB = getEnvString("SURREALDB_DB", "karteflow")
	cfg.SurrealUser = getEnvString("SURREALDB_USER", "")
	cfg.SurrealPass = getEnvString("SURREALDB_PASS", "")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 43200)
	cfg.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", 5*time.Minute)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitDocCreate = getEnvInt("RATE_LIMIT_DOC_CREATE", 30)
	cfg.HospitalName = getEnvString("HOSPITAL_NAME", "City General Hospital")
	cfg.HospitalAddress = getEnvString("HOSPITAL_ADDRESS", "123 Hospital Rd, Anytown")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
