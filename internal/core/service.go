package core

import (
	"context"
	"iter"
	"time"

	"cinemacore/internal/hall"
	"cinemacore/internal/infra/persistence/memory"
)

// Service exposes the booking operations consumed by the upstream collaborator.
// It hands out live handles whose reads and writes go through the store.
type Service struct {
	store     PersistentStore
	now       func() time.Time
	logger    Logger
	audit     AuditRecorder
	metrics   MetricsRecorder
	tracer    Tracer
	publisher EventPublisher
	hasher    PasswordHasher
	hall      hall.Matrix
	location  *time.Location
	schedule  ScheduleValidator
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{
		store:     store,
		now:       selectNowFunc(store, cfg.clock),
		logger:    cfg.logger,
		audit:     cfg.audit,
		metrics:   cfg.metrics,
		tracer:    cfg.tracer,
		publisher: cfg.publisher,
		hasher:    cfg.hasher,
		hall:      cfg.hall,
		location:  cfg.location,
	}
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
// A nil engine installs the default integrity rules.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	var storeOpts []memory.Option
	if cfg.clock != nil {
		storeOpts = append(storeOpts, memory.WithNowFunc(cfg.clock.Now))
	}
	return NewService(memory.NewStore(engine, storeOpts...), opts...)
}

type nowFuncProvider interface {
	NowFunc() func() time.Time
}

type rulesEngineProvider interface {
	RulesEngine() *RulesEngine
}

// selectNowFunc prefers an explicit clock, then the store's own time source,
// then the system clock. Every result reports UTC.
func selectNowFunc(store PersistentStore, clock Clock) func() time.Time {
	if clock != nil {
		return clock.Now
	}
	if provider, ok := store.(nowFuncProvider); ok {
		if fn := provider.NowFunc(); fn != nil {
			return ClockFunc(fn).Now
		}
	}
	return ClockFunc(nil).Now
}

func extractRulesEngine(store PersistentStore) *RulesEngine {
	if provider, ok := store.(rulesEngineProvider); ok {
		return provider.RulesEngine()
	}
	return nil
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// RulesEngine returns the store's rules engine when it exposes one.
func (s *Service) RulesEngine() *RulesEngine { return extractRulesEngine(s.store) }

// Hall returns the hall geometry seats are validated against.
func (s *Service) Hall() hall.Matrix { return s.hall }

// Location returns the zone calendar filters evaluate days in.
func (s *Service) Location() *time.Location { return s.location }

// Now returns the service's current instant.
func (s *Service) Now() time.Time { return s.now() }

type auditMeta struct {
	entity EntityType
	action Action
}

var auditOperations = map[string]auditMeta{
	"create_film":   {EntityFilm, ActionCreate},
	"update_film":   {EntityFilm, ActionUpdate},
	"delete_film":   {EntityFilm, ActionDelete},
	"create_seance": {EntitySeance, ActionCreate},
	"update_seance": {EntitySeance, ActionUpdate},
	"delete_seance": {EntitySeance, ActionDelete},
	"create_ticket": {EntityTicket, ActionCreate},
	"take_seat":     {EntityTicket, ActionUpdate},
	"delete_ticket": {EntityTicket, ActionDelete},
	"refund_ticket": {EntityTicket, ActionDelete},
	"create_user":   {EntityUser, ActionCreate},
	"update_user":   {EntityUser, ActionUpdate},
	"delete_user":   {EntityUser, ActionDelete},
}

// run executes fn in a store transaction wrapped with tracing, metrics, audit and logging.
// fn reports the id of the record it touched.
func (s *Service) run(ctx context.Context, op string, id int, fn func(tx Transaction) (int, error)) (Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	touched := id
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		touched, err = fn(tx)
		return err
	})
	duration := time.Since(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	if err != nil {
		s.recordAuditError(ctx, op, id, duration, err)
		s.logger.Debug("operation rejected", "operation", op, "id", id, "error", err)
		return res, err
	}
	for _, v := range res.Violations {
		s.logger.Warn("rule violation", "operation", op, "rule", v.Rule, "severity", v.Severity, "message", v.Message)
	}
	s.recordAuditSuccess(ctx, op, touched, duration)
	s.logger.Debug("operation committed", "operation", op, "id", touched)
	return res, nil
}

func (s *Service) recordAuditSuccess(ctx context.Context, op string, id int, duration time.Duration) {
	meta, ok := auditOperations[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  id,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.now(),
	})
}

func (s *Service) recordAuditError(ctx context.Context, op string, id int, duration time.Duration, err error) {
	meta, ok := auditOperations[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  id,
		Status:    AuditStatusError,
		Error:     err.Error(),
		Duration:  duration,
		Timestamp: s.now(),
	})
}

// publish delivers events after a commit. Failures are logged only: the
// mutation is already durable in memory.
func (s *Service) publish(ctx context.Context, events ...BookingEvent) {
	for _, ev := range events {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish booking event", "type", ev.Type, "ticket", ev.TicketID, "error", err)
		}
	}
}

func (s *Service) event(kind EventType, t Ticket) BookingEvent {
	return BookingEvent{
		Type:       kind,
		TicketID:   t.ID,
		SeanceID:   t.SeanceID,
		Row:        t.Row,
		Seat:       t.Seat,
		OccurredAt: s.now(),
	}
}

// view runs fn against committed state.
func (s *Service) view(ctx context.Context, fn func(TransactionView) error) error {
	return s.store.View(ctx, fn)
}

// ids materializes the ids yielded by seq so callers can iterate without
// holding the store lock.
func ids[R any](s *Service, seq func(TransactionView) iter.Seq[R], id func(R) int) []int {
	var out []int
	_ = s.view(context.Background(), func(v TransactionView) error {
		for r := range seq(v) {
			out = append(out, id(r))
		}
		return nil
	})
	return out
}
