package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	BackendURL       string
	AnonKey          string
	DatabaseURL      string
	DefaultUserID    string
	PublicOrigin     string
	AllowedOrigins   []string
	TryOnTimeout     time.Duration
	MaxDimension     int
	JPEGQuality      int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// ClientConfig configures the try-on command line client. The backend URL is
// optional there: it is only needed to resolve storage references.
type ClientConfig struct {
	AppEnv       string
	BackendURL   string
	PublicOrigin string
	ProxyURL     string
	DownloadDir  string
	TryOnTimeout time.Duration
	MaxDimension int
	JPEGQuality  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             port,
		BackendURL:       backendURL(),
		AnonKey:          firstEnv("SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DefaultUserID:    getEnv("DEFAULT_USER_ID", "1"),
		PublicOrigin:     publicOrigin(port),
		AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TryOnTimeout:     tryOnTimeout(),
		MaxDimension:     getEnvInt("TRYON_MAX_DIMENSION", 1024),
		JPEGQuality:      getEnvInt("TRYON_JPEG_QUALITY", 85),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}

	return cfg, nil
}

// LoadClientConfig loads the settings shared by command line clients.
func LoadClientConfig() *ClientConfig {
	port := getEnv("PORT", "8080")
	return &ClientConfig{
		AppEnv:       getEnv("APP_ENV", "development"),
		BackendURL:   backendURL(),
		PublicOrigin: strings.TrimRight(os.Getenv("PUBLIC_ORIGIN"), "/"),
		ProxyURL:     getEnv("TRYON_PROXY_URL", "http://localhost:"+port+"/api/try-on"),
		DownloadDir:  getEnv("DOWNLOAD_DIR", "./downloads"),
		TryOnTimeout: tryOnTimeout(),
		MaxDimension: getEnvInt("TRYON_MAX_DIMENSION", 1024),
		JPEGQuality:  getEnvInt("TRYON_JPEG_QUALITY", 85),
	}
}

func backendURL() string {
	return strings.TrimRight(firstEnv("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"), "/")
}

func publicOrigin(port string) string {
	return strings.TrimRight(getEnv("PUBLIC_ORIGIN", "http://localhost:"+port), "/")
}

func tryOnTimeout() time.Duration {
	return time.Second * time.Duration(getEnvInt("TRYON_TIMEOUT_SECONDS", 0))
}

// HasDatabase reports whether wardrobe lookups and attempt logging are enabled.
func (c *Config) HasDatabase() bool {
	return c != nil && c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
