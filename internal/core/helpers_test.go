package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinemacore/pkg/domain"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *auditRecorderStub) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
}

type metricsCall struct {
	operation string
	success   bool
}

type metricsRecorderStub struct {
	calls []metricsCall
}

func (m *metricsRecorderStub) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.calls = append(m.calls, metricsCall{operation: op, success: success})
}

type publisherStub struct {
	events []BookingEvent
	err    error
}

func (p *publisherStub) Publish(_ context.Context, ev BookingEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *publisherStub) types() []EventType {
	out := make([]EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakePersistentStore satisfies PersistentStore without any provider interfaces.
type fakePersistentStore struct{}

func (fakePersistentStore) RunInTransaction(context.Context, func(Transaction) error) (Result, error) {
	return Result{}, nil
}
func (fakePersistentStore) View(context.Context, func(TransactionView) error) error { return nil }
func (fakePersistentStore) GetFilm(int) (Film, bool)                                { return Film{}, false }
func (fakePersistentStore) GetSeance(int) (Seance, bool)                            { return Seance{}, false }
func (fakePersistentStore) GetTicket(int) (Ticket, bool)                            { return Ticket{}, false }
func (fakePersistentStore) GetUser(int) (User, bool)                                { return User{}, false }

// testEpoch is the fixed instant tests start at: the day before the scenario date.
var testEpoch = time.Date(2029, 12, 31, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *manualClock) {
	t.Helper()
	clock := &manualClock{now: testEpoch}
	base := []ServiceOption{WithClock(clock), WithLocation(time.UTC)}
	return NewInMemoryService(nil, append(base, opts...)...), clock
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := domain.ParseDateTime(value, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func mustFilm(t *testing.T, svc *Service, name string, duration int) FilmHandle {
	t.Helper()
	h, err := svc.NewFilm(context.Background(), name, name+" description", duration)
	if err != nil {
		t.Fatalf("create film %s: %v", name, err)
	}
	return h
}

func mustSeance(t *testing.T, svc *Service, film FilmHandle, start string) SeanceHandle {
	t.Helper()
	h, err := svc.NewSeance(context.Background(), film, at(t, start))
	if err != nil {
		t.Fatalf("create seance at %s: %v", start, err)
	}
	return h
}

func mustTicket(t *testing.T, svc *Service, seance SeanceHandle, row, seat int) TicketHandle {
	t.Helper()
	h, err := svc.NewTicket(context.Background(), seance, row, seat)
	if err != nil {
		t.Fatalf("sell row %d seat %d: %v", row, seat, err)
	}
	return h
}
