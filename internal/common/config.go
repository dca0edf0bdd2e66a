package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Partition    string // table partition / queue category, one per deployment
	Dictionaries string // path to the dictionaries YAML file
	Database     DatabaseConfig
	Queue        QueueConfig
	Storage      StorageConfig
	Server       ServerConfig
	Extract      ExtractConfig
	Worker       WorkerConfig
}

// DatabaseConfig selects the job-store backend and its connection settings.
type DatabaseConfig struct {
	Driver          string // "pgx" (production) or "sqlite" (development)
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// QueueConfig selects the queue backend.
type QueueConfig struct {
	Driver    string // "redis" (production) or "memory" (development)
	RedisAddr string
	Name      string
	TTL       time.Duration // 0 = messages never expire
}

// StorageConfig selects the file-storage backend.
type StorageConfig struct {
	Backend string // "filesystem" (development) or "s3" (production)
	RootDir string // filesystem root
	Bucket  string // s3 bucket
	Prefix  string // s3 key prefix
	Region  string
}

// ServerConfig holds the upload API settings.
type ServerConfig struct {
	HTTPAddr string
}

// ExtractConfig holds PDF text extraction settings.
type ExtractConfig struct {
	Pdftotext string // binary name or absolute path
}

// WorkerConfig holds pipeline worker settings.
type WorkerConfig struct {
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Partition:    getEnv("PARTITION", "unistad"),
		Dictionaries: getEnv("DICTIONARIES_PATH", "dictionaries.yaml"),
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "pgx"),
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Queue: QueueConfig{
			Driver:    getEnv("QUEUE_DRIVER", "redis"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			Name:      getEnv("QUEUE_NAME", "unistad-toprocess"),
			TTL:       getEnvAsDuration("QUEUE_TTL", 0),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "filesystem"),
			RootDir: getEnv("STORAGE_ROOT", "./data"),
			Bucket:  getEnv("S3_BUCKET", ""),
			Prefix:  getEnv("S3_PREFIX", ""),
			Region:  getEnv("AWS_REGION", ""),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Extract: ExtractConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
		},
		Worker: WorkerConfig{
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Dictionaries == "" {
		return NewAppError("CONFIG_ERROR", "DICTIONARIES_PATH is required", ErrInvalidInput)
	}
	if c.Storage.Backend == "s3" && c.Storage.Bucket == "" {
		return NewAppError("CONFIG_ERROR", "S3_BUCKET is required for the s3 backend", ErrInvalidInput)
	}
	return nil
}
