package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresBackendURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without backend url")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://proj.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "anon")
	t.Setenv("PORT", "1919")
	t.Setenv("PUBLIC_ORIGIN", "")
	t.Setenv("TRYON_TIMEOUT_SECONDS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BackendURL != "https://proj.supabase.co" {
		t.Fatalf("BackendURL mismatch: got %q", cfg.BackendURL)
	}
	if cfg.AnonKey != "anon" {
		t.Fatalf("AnonKey mismatch: got %q", cfg.AnonKey)
	}
	if cfg.PublicOrigin != "http://localhost:1919" {
		t.Fatalf("PublicOrigin mismatch: got %q", cfg.PublicOrigin)
	}
	if cfg.TryOnTimeout != 0 {
		t.Fatalf("TryOnTimeout should default to unbounded, got %s", cfg.TryOnTimeout)
	}
	if cfg.MaxDimension != 1024 || cfg.JPEGQuality != 85 {
		t.Fatalf("resize defaults mismatch: %d/%d", cfg.MaxDimension, cfg.JPEGQuality)
	}
	if cfg.HasDatabase() {
		t.Fatalf("HasDatabase should be false without DATABASE_URL")
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("AllowedOrigins mismatch: %#v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://primary.supabase.co")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://ignored.supabase.co")
	t.Setenv("TRYON_TIMEOUT_SECONDS", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BackendURL != "https://primary.supabase.co" {
		t.Fatalf("BackendURL mismatch: got %q", cfg.BackendURL)
	}
	if cfg.TryOnTimeout != 45*time.Second {
		t.Fatalf("TryOnTimeout mismatch: got %s", cfg.TryOnTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("AllowedOrigins mismatch: %#v", cfg.AllowedOrigins)
	}
	if !cfg.HasDatabase() {
		t.Fatalf("HasDatabase should be true")
	}
}

func TestLoadClientConfigWithoutBackend(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "")
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_ORIGIN", "")
	t.Setenv("TRYON_PROXY_URL", "")
	t.Setenv("DOWNLOAD_DIR", "")
	t.Setenv("TRYON_MAX_DIMENSION", "512")
	t.Setenv("TRYON_JPEG_QUALITY", "")
	t.Setenv("TRYON_TIMEOUT_SECONDS", "5")

	cfg := LoadClientConfig()
	if cfg.BackendURL != "" || cfg.PublicOrigin != "" {
		t.Fatalf("expected empty backend and origin, got %q / %q", cfg.BackendURL, cfg.PublicOrigin)
	}
	if cfg.ProxyURL != "http://localhost:9090/api/try-on" {
		t.Fatalf("ProxyURL mismatch: got %q", cfg.ProxyURL)
	}
	if cfg.DownloadDir != "./downloads" {
		t.Fatalf("DownloadDir mismatch: got %q", cfg.DownloadDir)
	}
	if cfg.MaxDimension != 512 || cfg.JPEGQuality != 85 {
		t.Fatalf("resize settings mismatch: %d/%d", cfg.MaxDimension, cfg.JPEGQuality)
	}
	if cfg.TryOnTimeout != 5*time.Second {
		t.Fatalf("TryOnTimeout mismatch: got %s", cfg.TryOnTimeout)
	}
}

func TestLoadClientConfigOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://proj.supabase.co/")
	t.Setenv("PUBLIC_ORIGIN", "https://app.test/")
	t.Setenv("TRYON_PROXY_URL", "https://app.test/api/try-on")
	t.Setenv("DOWNLOAD_DIR", "/tmp/results")

	cfg := LoadClientConfig()
	if cfg.BackendURL != "https://proj.supabase.co" || cfg.PublicOrigin != "https://app.test" {
		t.Fatalf("urls mismatch: %q / %q", cfg.BackendURL, cfg.PublicOrigin)
	}
	if cfg.ProxyURL != "https://app.test/api/try-on" || cfg.DownloadDir != "/tmp/results" {
		t.Fatalf("client settings mismatch: %+v", cfg)
	}
}
