package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	blobs "cinemacore/internal/blob"
	"cinemacore/internal/core"
	"cinemacore/internal/infra/persistence"
)

type captureLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (l *captureLogger) Debug(string, ...any) {}
func (l *captureLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	l.infos = append(l.infos, msg)
	l.mu.Unlock()
}
func (l *captureLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
func (l *captureLogger) Error(string, ...any) {}

type failingBackend struct{ err error }

func (b failingBackend) Load(context.Context) ([]byte, error) { return nil, b.err }
func (b failingBackend) Save(context.Context, []byte) error   { return b.err }
func (b failingBackend) Close() error                         { return nil }

var testNow = time.Date(2029, 12, 31, 12, 0, 0, 0, time.UTC)

func newService() *core.Service {
	return core.NewInMemoryService(nil,
		core.WithClock(core.ClockFunc(func() time.Time { return testNow })),
		core.WithLocation(time.UTC),
	)
}

func TestRestoreMissingSeedsAdmin(t *testing.T) {
	logger := &captureLogger{}
	m := NewManager(NewMemoryBackend(), WithLogger(logger), WithCodec(Codec{Location: time.UTC}))
	svc := newService()
	outcome, err := m.Restore(context.Background(), svc)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome)
	}
	if _, ok := svc.Authorize(core.DefaultAdminLogin, core.DefaultAdminPassword); !ok {
		t.Fatal("expected default admin to authorize")
	}
	if len(logger.infos) != 1 {
		t.Fatalf("expected one info message, got %v", logger.infos)
	}
}

func TestRestoreCorruptWarnsAndStartsOver(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	if err := backend.Save(ctx, []byte("{broken")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	logger := &captureLogger{}
	m := NewManager(backend, WithLogger(logger))
	svc := newService()
	if _, err := svc.NewFilm(ctx, "Leftover", "", 90); err != nil {
		t.Fatalf("film: %v", err)
	}
	outcome, err := m.Restore(ctx, svc)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if outcome != OutcomeReset {
		t.Fatalf("expected reset, got %s", outcome)
	}
	if len(logger.warns) != 1 {
		t.Fatalf("expected a warning, got %v", logger.warns)
	}
	counts := svc.Store().(*core.MemoryStore).Counts()
	if counts[core.EntityFilm] != 0 || counts[core.EntityUser] != 1 {
		t.Fatalf("expected a fresh store with the admin, got %v", counts)
	}
}

func TestRestoreSurfacesBackendFailures(t *testing.T) {
	m := NewManager(failingBackend{err: errors.New("disk on fire")})
	if _, err := m.Restore(context.Background(), newService()); err == nil {
		t.Fatal("expected backend failure to surface")
	}
	if err := m.Save(context.Background(), newService()); err == nil {
		t.Fatal("expected save failure to surface")
	}
}

func TestSaveThenRestoreThroughFileBackend(t *testing.T) {
	ctx := context.Background()
	cfg := BackendConfig{Driver: core.StorageFile, FilePath: filepath.Join(t.TempDir(), "db.json")}
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	codec := Codec{Location: time.UTC, Compress: true}
	m := NewManager(backend, WithCodec(codec))

	svc := newService()
	if _, err := m.Restore(ctx, svc); err != nil {
		t.Fatalf("restore fresh: %v", err)
	}
	film, err := svc.NewFilm(ctx, "Alien", "in space", 117)
	if err != nil {
		t.Fatalf("film: %v", err)
	}
	seance, err := svc.NewSeance(ctx, film, time.Date(2030, 1, 2, 20, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("seance: %v", err)
	}
	if _, err := svc.SellTicket(ctx, seance.ID(), 2, 5, true); err != nil {
		t.Fatalf("ticket: %v", err)
	}
	if _, err := svc.NewUser(ctx, "bob", "secret", false); err != nil {
		t.Fatalf("user: %v", err)
	}
	if err := m.Save(ctx, svc); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := OpenBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	restored := newService()
	outcome, err := NewManager(reopened, WithCodec(codec)).Restore(ctx, restored)
	if err != nil || outcome != OutcomeLoaded {
		t.Fatalf("restore: %s %v", outcome, err)
	}
	if _, ok := restored.Authorize("bob", "secret"); !ok {
		t.Fatal("expected bob to survive the round trip")
	}
	got, err := restored.SeanceByID(seance.ID())
	if err != nil {
		t.Fatalf("seance lookup: %v", err)
	}
	start, _ := got.StartTime()
	if !start.Equal(time.Date(2030, 1, 2, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	taken, err := restored.TakenSeats(got)
	if err != nil || len(taken) != 1 {
		t.Fatalf("expected one taken seat, got %v %v", taken, err)
	}
	next, err := restored.NewFilm(ctx, "Aliens", "", 137)
	if err != nil {
		t.Fatalf("film after restore: %v", err)
	}
	if next.ID() != film.ID()+1 {
		t.Fatalf("expected counters to continue, got id %d", next.ID())
	}
}

func TestOpenBackendSelectsDriver(t *testing.T) {
	ctx := context.Background()
	if b, err := OpenBackend(ctx, BackendConfig{Driver: core.StorageMemory}); err != nil {
		t.Fatalf("memory: %v", err)
	} else if _, err := b.Load(ctx); !errors.Is(err, persistence.ErrNotExist) {
		t.Fatalf("expected empty memory backend, got %v", err)
	}
	if _, err := OpenBackend(ctx, BackendConfig{Driver: core.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "c.db")}); err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, err := OpenBackend(ctx, BackendConfig{Driver: core.StorageBlob, Blob: blobConfigMemory()}); err != nil {
		t.Fatalf("blob: %v", err)
	}
	if _, err := OpenBackend(ctx, BackendConfig{Driver: "floppy"}); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}

func blobConfigMemory() blobs.Config { return blobs.Config{Driver: blobs.DriverMemory} }
