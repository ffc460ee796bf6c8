package config

import (
	"errors"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_ENV", "ADDR", "DATABASE_DRIVER", "CACHE_URL", "CACHE_TTL", "RABBIT_MQ_URL", "JWT_EXPIRE", "AUTH_RATE_LIMIT"} {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_DSN", "host=localhost dbname=movies")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Env != EnvDevelopment || !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Addr != ":5000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DatabaseDriver != DriverPostgres {
		t.Errorf("DatabaseDriver = %q", cfg.DatabaseDriver)
	}
	if cfg.CacheTTL != 5*time.Minute || cfg.JWTExpire != 7*24*time.Hour {
		t.Errorf("CacheTTL = %v, JWTExpire = %v", cfg.CacheTTL, cfg.JWTExpire)
	}
	if cfg.AuthRateLimit != 5 {
		t.Errorf("AuthRateLimit = %v", cfg.AuthRateLimit)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("DATABASE_DRIVER", DriverSQLite)
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("AUTH_RATE_LIMIT", "0.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("production config reports development")
	}
	if cfg.DatabaseDriver != DriverSQLite || cfg.JWTExpire != 2*time.Hour || cfg.AuthRateLimit != 0.5 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want error
	}{
		{"missing dsn", "DATABASE_DSN", "", ErrMissingDSN},
		{"missing secret", "JWT_SECRET", "", ErrMissingJWTSecret},
		{"unknown driver", "DATABASE_DRIVER", "mysql", ErrUnknownDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := LoadConfig(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("bad duration", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("CACHE_TTL", "soon")
		if _, err := LoadConfig(); err == nil {
			t.Error("expected an error for an unparsable duration")
		}
	})
}
