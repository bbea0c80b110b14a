package core

import (
	"cinemacore/internal/infra/persistence/memory"
	"cinemacore/pkg/domain"
)

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Film               = domain.Film
	Seance             = domain.Seance
	Ticket             = domain.Ticket
	User               = domain.User
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityFilm   = domain.EntityFilm
	EntitySeance = domain.EntitySeance
	EntityTicket = domain.EntityTicket
	EntityUser   = domain.EntityUser
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// MemoryStore is the in-memory store every service runs on.
type MemoryStore = memory.Store

// NewMemoryStore constructs an in-memory store with the given rules engine.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	return memory.NewStore(engine)
}
