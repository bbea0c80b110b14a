// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by cinemacore.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and snapshot buckets.
const (
	// EntityFilm identifies a film record.
	EntityFilm EntityType = "film"
	// EntitySeance identifies a scheduled screening of a film.
	EntitySeance EntityType = "seance"
	// EntityTicket identifies a sold seat for a seance.
	EntityTicket EntityType = "ticket"
	// EntityUser identifies a user account.
	EntityUser EntityType = "user"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Film is a movie that can be scheduled in the hall.
type Film struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Duration is expressed in whole minutes.
	Duration int `json:"duration"`
}

// Length returns the film duration as a time.Duration.
func (f Film) Length() time.Duration {
	return time.Duration(f.Duration) * time.Minute
}

// Seance is a screening of a film starting at a minute-resolution timestamp.
type Seance struct {
	ID        int       `json:"id"`
	FilmID    int       `json:"film_id"`
	StartTime time.Time `json:"start_time"`
}

// End returns the instant the seance frees the hall for a film of the given duration.
func (s Seance) End(film Film) time.Time {
	return s.StartTime.Add(film.Length())
}

// Ticket is a sold seat for a seance.
type Ticket struct {
	ID        int  `json:"id"`
	SeanceID  int  `json:"seance_id"`
	Row       int  `json:"row"`
	Seat      int  `json:"seat"`
	SeatTaken bool `json:"seat_taken"`
}

// User is an account able to log in. PasswordHash is opaque to the domain.
type User struct {
	ID           int    `json:"id"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID int
	// Err classifies the violation, e.g. ErrUniqueConstraint.
	Err error
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	var msgs []string
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			msgs = append(msgs, v.Message)
		}
	}
	if len(msgs) == 0 {
		return "transaction blocked by rules"
	}
	return "transaction blocked by rules: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the classification of every blocking violation to errors.Is.
func (e RuleViolationError) Unwrap() []error {
	var errs []error
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock && v.Err != nil {
			errs = append(errs, v.Err)
		}
	}
	return errs
}
