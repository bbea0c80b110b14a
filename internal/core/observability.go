package core

import (
	"context"
	"time"

	"cinemacore/internal/hall"
)

// Logger is the structured logging surface used by the service. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock provides the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock. A nil ClockFunc reports the system time in UTC.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes a completed service operation.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  int
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for every audited mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes operation outcomes and latency.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// EventType names booking events.
type EventType string

// Booking events emitted after a successful commit.
const (
	EventTicketSold     EventType = "ticket_sold"
	EventTicketRefunded EventType = "ticket_refunded"
	EventSeatTaken      EventType = "seat_taken"
)

// BookingEvent describes a ticket state change.
type BookingEvent struct {
	Type       EventType `json:"type"`
	TicketID   int       `json:"ticket_id"`
	SeanceID   int       `json:"seance_id"`
	Row        int       `json:"row"`
	Seat       int       `json:"seat"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers booking events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, BookingEvent) error { return nil }

// ServiceOption configures optional service collaborators.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	clock     Clock
	logger    Logger
	audit     AuditRecorder
	metrics   MetricsRecorder
	tracer    Tracer
	publisher EventPublisher
	hasher    PasswordHasher
	hall      hall.Matrix
	location  *time.Location
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:     nil,
		logger:    noopLogger{},
		audit:     noopAuditRecorder{},
		metrics:   noopMetricsRecorder{},
		tracer:    noopTracer{},
		publisher: noopPublisher{},
		hasher:    SHA256Hasher{},
		hall:      hall.New(hall.DefaultRows, hall.DefaultSeats),
		location:  time.Local,
	}
}

// WithClock overrides the time source used by validators.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder records an AuditEntry for every mutation.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder observes every operation.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer wraps every operation in a span.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithPublisher delivers booking events after commit.
func WithPublisher(publisher EventPublisher) ServiceOption {
	return func(o *serviceOptions) {
		if publisher != nil {
			o.publisher = publisher
		}
	}
}

// WithPasswordHasher replaces the default SHA-256 hasher.
func WithPasswordHasher(hasher PasswordHasher) ServiceOption {
	return func(o *serviceOptions) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}

// WithHall sets the hall geometry used to validate seats.
func WithHall(h hall.Matrix) ServiceOption {
	return func(o *serviceOptions) {
		if h.Rows > 0 && h.Seats > 0 {
			o.hall = h
		}
	}
}

// WithLocation sets the zone calendar filters evaluate days in.
func WithLocation(loc *time.Location) ServiceOption {
	return func(o *serviceOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}
