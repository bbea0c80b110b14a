// Command cinemacore serves the cinema booking store over HTTP. The store is
// restored from the configured snapshot backend at startup and saved back on
// shutdown.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	blobs "cinemacore/internal/blob"
	"cinemacore/internal/config"
	"cinemacore/internal/core"
	"cinemacore/internal/events"
	"cinemacore/internal/hall"
	"cinemacore/internal/infra/persistence/redis"
	"cinemacore/internal/snapshot"
	"cinemacore/internal/transport/httpapi"
)

const shutdownTimeout = 10 * time.Second

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cinemacore:", err)
		exitFunc(1)
	}
}

type flags struct {
	envFile      string
	addr         string
	driver       string
	snapshotPath string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("cinemacore", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.envFile, "env-file", "", "load settings from this .env file")
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address (overrides CINEMACORE_HTTP_ADDR)")
	fs.StringVar(&f.driver, "snapshot-driver", "", "snapshot backend: file, memory, sqlite, postgres, mysql, redis or blob")
	fs.StringVar(&f.snapshotPath, "snapshot-path", "", "snapshot file for the file backend")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// apply lets command line flags win over the environment.
func (f flags) apply(cfg *config.Config) error {
	if f.addr != "" {
		cfg.HTTPAddr = f.addr
	}
	if f.driver != "" {
		driver, err := core.ParseStorageDriver(f.driver)
		if err != nil {
			return err
		}
		cfg.Storage.Driver = driver
	}
	if f.snapshotPath != "" {
		cfg.Storage.FilePath = f.snapshotPath
	}
	return nil
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func backendConfig(s config.Storage) snapshot.BackendConfig {
	return snapshot.BackendConfig{
		Driver:      s.Driver,
		FilePath:    s.FilePath,
		SQLitePath:  s.SQLitePath,
		PostgresDSN: s.PostgresDSN,
		MySQLDSN:    s.MySQLDSN,
		Redis: redis.Config{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Key:      s.RedisKey,
		},
		Blob: blobs.Config{
			Driver: blobs.Driver(s.BlobDriver),
			FSRoot: s.BlobFSRoot,
			S3: blobs.S3Config{
				Region:          s.S3Region,
				Bucket:          s.S3Bucket,
				Endpoint:        s.S3Endpoint,
				AccessKeyID:     s.S3AccessKey,
				SecretAccessKey: s.S3SecretKey,
				PathStyle:       s.S3UsePathStyle,
			},
		},
		BlobKey: s.BlobKey,
	}
}

// app is the wired service plus whatever must be released with it.
type app struct {
	svc       *core.Service
	metrics   http.Handler
	expvar    bool
	publisher *events.AMQPPublisher
}

func (r app) Close() error {
	if r.publisher == nil {
		return nil
	}
	return r.publisher.Close()
}

func buildService(cfg config.Config, logger *slog.Logger) (app, error) {
	hasher, err := core.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return app{}, err
	}
	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithAuditRecorder(core.LogAuditRecorder{Logger: logger}),
		core.WithPasswordHasher(hasher),
		core.WithHall(hall.New(cfg.HallRows, cfg.HallSeats)),
		core.WithLocation(cfg.Location),
	}

	var rt app
	switch cfg.Metrics {
	case "expvar":
		opts = append(opts, core.WithMetricsRecorder(core.NewExpvarMetricsRecorder("cinemacore")))
		rt.expvar = true
	case "prometheus":
		reg := prometheus.NewRegistry()
		rec, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return app{}, fmt.Errorf("prometheus metrics: %w", err)
		}
		opts = append(opts, core.WithMetricsRecorder(rec))
		rt.metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	if cfg.AMQPURL != "" {
		pub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return app{}, fmt.Errorf("amqp: %w", err)
		}
		opts = append(opts, core.WithPublisher(pub))
		rt.publisher = pub
		logger.Info("publishing booking events", "queue", pub.Queue())
	}

	rt.svc = core.NewInMemoryService(nil, opts...)
	return rt, nil
}

func jwtSecret(cfg config.Config, logger *slog.Logger) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	logger.Warn("CINEMACORE_JWT_SECRET is not set; tokens will not survive a restart")
	return hex.EncodeToString(buf), nil
}

func run(ctx context.Context, args []string, stderr io.Writer) (err error) {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return err
	}
	if err := f.apply(&cfg); err != nil {
		return err
	}
	logger := newLogger(cfg, stderr)

	rt, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Close()) }()

	backend, err := snapshot.OpenBackend(ctx, backendConfig(cfg.Storage))
	if err != nil {
		return err
	}
	mgr := snapshot.NewManager(backend,
		snapshot.WithLogger(logger),
		snapshot.WithCodec(snapshot.Codec{Location: cfg.Location, Compress: cfg.Storage.Compress}),
	)
	defer func() { err = errors.Join(err, mgr.Close()) }()

	outcome, err := mgr.Restore(ctx, rt.svc)
	if err != nil {
		return err
	}
	logger.Info("snapshot restored", "driver", cfg.Storage.Driver, "outcome", outcome)

	secret, err := jwtSecret(cfg, logger)
	if err != nil {
		return err
	}
	srv, err := httpapi.New(rt.svc, httpapi.Config{
		JWTSecret: secret,
		TokenTTL:  cfg.AccessTokenTTL,
		Metrics:   rt.metrics,
		Expvar:    rt.expvar,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	served := make(chan error, 1)
	go func() { served <- srv.Start(cfg.HTTPAddr) }()
	logger.Info("listening", "addr", cfg.HTTPAddr)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-served:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	unlock := srv.Lock()
	saveErr := mgr.Save(shutdownCtx, rt.svc)
	unlock()
	if saveErr == nil {
		logger.Info("snapshot saved", "driver", cfg.Storage.Driver)
	}
	return errors.Join(serveErr, saveErr)
}
