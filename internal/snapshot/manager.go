package snapshot

import (
	"context"
	"errors"
	"fmt"

	"cinemacore/internal/core"
	"cinemacore/internal/infra/persistence"
	"cinemacore/internal/infra/persistence/memory"
)

// Outcome describes how Restore populated the store.
type Outcome string

const (
	// OutcomeLoaded means the stored document was decoded and imported.
	OutcomeLoaded Outcome = "loaded"
	// OutcomeCreated means no document existed and a fresh store was seeded.
	OutcomeCreated Outcome = "created"
	// OutcomeReset means the document was unreadable and a fresh store was seeded.
	OutcomeReset Outcome = "reset"
)

// StateStore is the part of the in-memory store a Manager needs.
type StateStore interface {
	ExportState() memory.Snapshot
	ImportState(memory.Snapshot)
}

// Manager loads the store once at startup and saves it once at shutdown.
type Manager struct {
	backend persistence.Backend
	codec   Codec
	logger  core.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes restore and save messages to logger.
func WithLogger(logger core.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCodec overrides the document codec.
func WithCodec(codec Codec) Option {
	return func(m *Manager) { m.codec = codec }
}

// NewManager wraps backend.
func NewManager(backend persistence.Backend, opts ...Option) *Manager {
	m := &Manager{backend: backend, logger: discardLogger{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Codec returns the codec in use.
func (m *Manager) Codec() Codec { return m.codec }

// Restore replaces the service's state with the stored document. A missing
// document yields a fresh store with the default admin. So does an
// unreadable one, after a warning. Backend failures are returned as is.
func (m *Manager) Restore(ctx context.Context, svc *core.Service) (Outcome, error) {
	store, err := stateStore(svc)
	if err != nil {
		return "", err
	}
	data, err := m.backend.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrNotExist):
		m.logger.Info("snapshot not found, creating a new database")
		return OutcomeCreated, m.fresh(ctx, svc, store)
	case err != nil:
		return "", fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := m.codec.Decode(data)
	if err != nil {
		m.logger.Warn("snapshot unreadable, starting over", "error", err)
		return OutcomeReset, m.fresh(ctx, svc, store)
	}
	store.ImportState(snap)
	m.logger.Info("snapshot loaded", "films", len(snap.Films), "seances", len(snap.Seances),
		"tickets", len(snap.Tickets), "users", len(snap.Users))
	return OutcomeLoaded, nil
}

func (m *Manager) fresh(ctx context.Context, svc *core.Service, store StateStore) error {
	store.ImportState(memory.Snapshot{})
	if _, err := svc.SeedAdmin(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// Save encodes the service's state and replaces the stored document.
func (m *Manager) Save(ctx context.Context, svc *core.Service) error {
	store, err := stateStore(svc)
	if err != nil {
		return err
	}
	data, err := m.codec.Encode(store.ExportState())
	if err != nil {
		return err
	}
	if err := m.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	m.logger.Info("snapshot saved", "bytes", len(data), "compressed", m.codec.Compress)
	return nil
}

// Close releases the backend.
func (m *Manager) Close() error { return m.backend.Close() }

func stateStore(svc *core.Service) (StateStore, error) {
	store, ok := svc.Store().(StateStore)
	if !ok {
		return nil, fmt.Errorf("store %T does not support snapshots", svc.Store())
	}
	return store, nil
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
