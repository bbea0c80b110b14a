package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cinemacore/internal/core"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Storage.Driver != core.StorageFile || cfg.Storage.FilePath != "db.json" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.HallRows != 10 || cfg.HallSeats != 30 {
		t.Fatalf("unexpected hall %dx%d", cfg.HallRows, cfg.HallSeats)
	}
	if cfg.HTTPAddr != ":8080" || cfg.AccessTokenTTL != time.Hour || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Location != time.Local || cfg.Metrics != "expvar" || cfg.PasswordHasher != "sha256" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CINEMACORE_SNAPSHOT_DRIVER", "Redis")
	t.Setenv("CINEMACORE_REDIS_DB", "3")
	t.Setenv("CINEMACORE_SNAPSHOT_COMPRESS", "on")
	t.Setenv("CINEMACORE_HALL_ROWS", "5")
	t.Setenv("CINEMACORE_TIMEZONE", "UTC")
	t.Setenv("CINEMACORE_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("CINEMACORE_LOG_LEVEL", "debug")
	t.Setenv("CINEMACORE_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("CINEMACORE_BCRYPT_COST", "not-a-number")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Storage.Driver != core.StorageRedis || cfg.Storage.RedisDB != 3 || !cfg.Storage.Compress {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.HallRows != 5 || cfg.Location != time.UTC || cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug || !cfg.Storage.S3UsePathStyle {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected malformed int to fall back, got %d", cfg.BcryptCost)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"CINEMACORE_SNAPSHOT_DRIVER", "floppy"},
		"hall":     {"CINEMACORE_HALL_SEATS", "0"},
		"timezone": {"CINEMACORE_TIMEZONE", "Mars/Olympus"},
		"level":    {"CINEMACORE_LOG_LEVEL", "loud"},
		"metrics":  {"CINEMACORE_METRICS", "statsd"},
		"format":   {"CINEMACORE_LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", kv[0], kv[1])
			}
		})
	}
}

func TestLoadReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "CINEMACORE_HTTP_ADDR=:9090\nCINEMACORE_JWT_SECRET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CINEMACORE_JWT_SECRET", "from-env")
	// Registered with t.Setenv so the value loaded from the file is reset afterwards.
	t.Setenv("CINEMACORE_HTTP_ADDR", "")
	os.Unsetenv("CINEMACORE_HTTP_ADDR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected addr from file, got %s", cfg.HTTPAddr)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("expected environment to win, got %s", cfg.JWTSecret)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected an explicit missing env file to fail")
	}
}
