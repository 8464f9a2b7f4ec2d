package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 1h", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("CORSAllowedOrigins = %v, want the frontend URL", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want 9000", cfg.ServerPort)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.AuthRateLimit != 30 {
		t.Errorf("AuthRateLimit = %d, want fallback 30", cfg.AuthRateLimit)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Errorf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}

func TestJWTSecret(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		secret     string
		wantSecret string
		wantErr    error
	}{
		{name: "production without secret", env: "production", wantErr: ErrMissingJWTSecret},
		{name: "default env without secret", env: "", wantErr: ErrMissingJWTSecret},
		{name: "production with secret", env: "production", secret: "s3cret", wantSecret: "s3cret"},
		{name: "development without secret", env: "Development", wantSecret: devJWTSecret},
		{name: "development keeps explicit secret", env: "development", secret: "mine", wantSecret: "mine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("JWT_SECRET", tt.secret)

			cfg := Load()

			if cfg.JWTSecret != tt.wantSecret {
				t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, tt.wantSecret)
			}
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrustProxy(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TRUST_PROXY", tt.value)
			if got := Load().TrustProxy; got != tt.want {
				t.Errorf("TrustProxy = %v, want %v", got, tt.want)
			}
		})
	}
}
