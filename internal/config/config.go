package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"diario/internal/crypto"
)

const (
	BackendLocal  = "local"
	BackendHosted = "hosted"
)

type Config struct {
	// Application
	AppEnv string
	Port   string

	// Storage
	StorageBackend string // local: every record in kv_records; hosted: accounts and entries in tables
	DBDriver       string // sqlite, pgx or memory
	DBConnection   string

	// Security
	JWTSecret     string
	JWTExpiry     time.Duration
	EncryptionKey []byte // optional for local, required for hosted
	BlindIndexKey []byte

	// HTTP
	CORSOrigins    []string
	AuthRateLimit  int // requests per client per AuthRateWindow on /api/auth
	AuthRateWindow time.Duration
}

// Load reads the environment, after a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{
		AppEnv: envString("APP_ENV", "development"),
		Port:   envString("PORT", "8080"),

		StorageBackend: envString("STORAGE_BACKEND", BackendLocal),
		DBDriver:       envString("DB_DRIVER", "sqlite"),
		DBConnection:   envString("DB_CONNECTION", "./data/diario.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 7*24*time.Hour, &errs),

		CORSOrigins:    envList("CORS_ORIGINS", []string{"*"}),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 10, &errs),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", 15*time.Minute, &errs),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch cfg.StorageBackend {
	case BackendLocal, BackendHosted:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendLocal, BackendHosted, cfg.StorageBackend))
	}
	switch cfg.DBDriver {
	case "sqlite", "pgx", "memory":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite, pgx or memory, got %q", cfg.DBDriver))
	}

	cfg.EncryptionKey = envKey("ENCRYPTION_KEY", &errs)
	cfg.BlindIndexKey = envKey("BLIND_INDEX_KEY", &errs)
	if (cfg.EncryptionKey == nil) != (cfg.BlindIndexKey == nil) {
		errs = append(errs, errors.New("ENCRYPTION_KEY and BLIND_INDEX_KEY must be set together"))
	}
	if cfg.StorageBackend == BackendHosted {
		if cfg.EncryptionKey == nil {
			errs = append(errs, errors.New("hosted storage requires ENCRYPTION_KEY and BLIND_INDEX_KEY"))
		}
		if cfg.DBDriver == "memory" {
			errs = append(errs, errors.New("hosted storage requires a sqlite or pgx database"))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Encrypted reports whether values are sealed at rest.
func (c *Config) Encrypted() bool {
	return c.EncryptionKey != nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid positive integer %q", key, v))
		return def
	}
	return n
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envKey(key string, errs *[]error) []byte {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := crypto.ParseKey(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return b
}
