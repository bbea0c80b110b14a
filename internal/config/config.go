// Package config loads runtime settings from the environment and an optional
// .env file. Every variable carries the CINEMACORE_ prefix.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cinemacore/internal/core"
)

const prefix = "CINEMACORE_"

// Storage selects the snapshot backend and its connection settings.
type Storage struct {
	Driver      core.StorageDriver
	FilePath    string
	SQLitePath  string
	PostgresDSN string
	MySQLDSN    string
	Compress    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	BlobDriver     string
	BlobFSRoot     string
	BlobKey        string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// Config holds all runtime configuration values.
type Config struct {
	Storage Storage

	HallRows  int
	HallSeats int
	Location  *time.Location

	PasswordHasher string
	BcryptCost     int

	HTTPAddr       string
	JWTSecret      string
	AccessTokenTTL time.Duration

	LogLevel  slog.Level
	LogFormat string

	AMQPURL   string
	AMQPQueue string

	Metrics string
}

// Load reads envFile (when set, it must exist) or ./.env (when present) and
// then the process environment. Real environment variables win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (Config, error) {
	driver, err := core.ParseStorageDriver(envStr("SNAPSHOT_DRIVER", string(core.StorageFile)))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Storage: Storage{
			Driver:         driver,
			FilePath:       envStr("SNAPSHOT_PATH", "db.json"),
			SQLitePath:     envStr("SQLITE_PATH", "cinemacore.db"),
			PostgresDSN:    envStr("POSTGRES_DSN", ""),
			MySQLDSN:       envStr("MYSQL_DSN", ""),
			Compress:       envBool("SNAPSHOT_COMPRESS", false),
			RedisAddr:      envStr("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  envStr("REDIS_PASSWORD", ""),
			RedisDB:        envInt("REDIS_DB", 0),
			RedisKey:       envStr("REDIS_KEY", "cinemacore:snapshot"),
			BlobDriver:     envStr("BLOB_DRIVER", "fs"),
			BlobFSRoot:     envStr("BLOB_FS_ROOT", "blobdata"),
			BlobKey:        envStr("BLOB_KEY", "snapshots/db.json"),
			S3Bucket:       envStr("BLOB_S3_BUCKET", ""),
			S3Region:       envStr("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:     envStr("BLOB_S3_ENDPOINT", ""),
			S3AccessKey:    envStr("BLOB_S3_ACCESS_KEY", ""),
			S3SecretKey:    envStr("BLOB_S3_SECRET_KEY", ""),
			S3UsePathStyle: envBool("BLOB_S3_PATH_STYLE", false),
		},
		HallRows:       envInt("HALL_ROWS", 10),
		HallSeats:      envInt("HALL_SEATS", 30),
		PasswordHasher: strings.ToLower(envStr("PASSWORD_HASHER", "sha256")),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		HTTPAddr:       envStr("HTTP_ADDR", ":8080"),
		JWTSecret:      envStr("JWT_SECRET", ""),
		AccessTokenTTL: envDur("ACCESS_TOKEN_TTL", time.Hour),
		LogFormat:      strings.ToLower(envStr("LOG_FORMAT", "text")),
		AMQPURL:        envStr("AMQP_URL", ""),
		AMQPQueue:      envStr("AMQP_QUEUE", "cinema.bookings"),
		Metrics:        strings.ToLower(envStr("METRICS", "expvar")),
	}

	if cfg.HallRows < 1 || cfg.HallSeats < 1 {
		return Config{}, fmt.Errorf("hall must have at least one row and seat, got %dx%d", cfg.HallRows, cfg.HallSeats)
	}
	tz := envStr("TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("timezone %q: %w", tz, err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envStr("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	switch cfg.Metrics {
	case "expvar", "prometheus", "none":
	default:
		return Config{}, fmt.Errorf("unknown metrics exporter %q", cfg.Metrics)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

func envStr(k, d string) string {
	if v := os.Getenv(prefix + k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(prefix + k)
	if v == "" {
		return d
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(prefix + k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(prefix + k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
