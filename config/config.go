package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/qs-lzh/movie-watchlist/internal/util"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env            string
	Addr           string
	DatabaseDriver string
	DatabaseDSN    string
	CacheURL       string
	CacheTTL       time.Duration
	MQURL          string
	JWTSecret      string
	JWTExpire      time.Duration
	AuthRateLimit  float64
}

var (
	ErrMissingDSN       = errors.New("DATABASE_DSN is required")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
	ErrUnknownDriver    = errors.New("DATABASE_DRIVER must be postgres or sqlite")
)

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	cacheTTL, err := util.GetEnvDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	jwtExpire, err := util.GetEnvDuration("JWT_EXPIRE", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	rateLimit := 5.0
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		rateLimit, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Env:            util.GetEnv("APP_ENV", EnvDevelopment),
		Addr:           util.GetEnv("ADDR", ":5000"),
		DatabaseDriver: util.GetEnv("DATABASE_DRIVER", DriverPostgres),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		CacheURL:       os.Getenv("CACHE_URL"),
		CacheTTL:       cacheTTL,
		MQURL:          os.Getenv("RABBIT_MQ_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpire:      jwtExpire,
		AuthRateLimit:  rateLimit,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return ErrMissingDSN
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		return ErrUnknownDriver
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
