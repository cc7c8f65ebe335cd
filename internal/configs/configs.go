/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the server by reading operating system environment variables: the running
environment, port, CORS allowed origins, the persistence backend, the optional Redis cache and
S3 attachment storage, and the tuning knobs of the real-time delivery layer.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values of STORE_DRIVER.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins    []string
	JWTSecret         string
	RoomAuthorization bool

	// Persistence Settings
	StoreDriver string
	DataDir     string
	DatabaseDSN string

	// Redis Cache Settings (optional, an in-process cache is used when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// S3 Storage Settings (optional, attachments are disabled when S3BucketName is empty)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Real-time Delivery Settings
	SendQueueSize int
	WriteTimeout  time.Duration
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// AttachmentsEnabled reports whether S3 settings were provided.
func (c *AppConfig) AttachmentsEnabled() bool {
	return c.S3BucketName != ""
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type conversions and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intEnv("PORT", 5000)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		jwtSecret = "guildchat_insecure_development_secret"
	}
	cfg.JWTSecret = jwtSecret

	cfg.RoomAuthorization, err = boolEnv("ROOM_AUTHORIZATION", true)
	if err != nil {
		return nil, err
	}

	// --- Persistence Settings ---
	cfg.StoreDriver = strings.ToLower(os.Getenv("STORE_DRIVER"))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreJSON
	}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	switch cfg.StoreDriver {
	case StoreJSON:
	case StoreSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = cfg.DataDir + "/guildchat.db"
		}
	case StoreMySQL, StorePostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the %s store driver", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	// --- Redis Cache Settings ---
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB, err = intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	if cfg.S3BucketName != "" {
		if cfg.S3Endpoint == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required when S3_BUCKET_NAME is set")
		}
	}

	// --- Real-time Delivery Settings ---
	cfg.SendQueueSize, err = intEnv("SEND_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	if cfg.SendQueueSize < 1 {
		return nil, fmt.Errorf("SEND_QUEUE_SIZE must be positive, got %d", cfg.SendQueueSize)
	}

	cfg.WriteTimeout = 10 * time.Second
	if s := os.Getenv("WRITE_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid WRITE_TIMEOUT environment variable: %w", err)
		}
		cfg.WriteTimeout = d
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
