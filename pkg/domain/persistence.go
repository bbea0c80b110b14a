package domain

import (
	"context"
	"iter"
	"time"
)

// TransactionView provides read-only access to store data for rules and queries.
// Sequences iterate current ids in unspecified order.
type TransactionView interface {
	Films() iter.Seq[Film]
	Seances() iter.Seq[Seance]
	Tickets() iter.Seq[Ticket]
	Users() iter.Seq[User]
	FindFilm(id int) (Film, bool)
	FindSeance(id int) (Seance, bool)
	FindTicket(id int) (Ticket, bool)
	FindUser(id int) (User, bool)
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Reads observe the uncommitted state.
type Transaction interface {
	TransactionView
	// Now is the instant captured when the transaction started.
	Now() time.Time
	CreateFilm(Film) (Film, error)
	UpdateFilm(id int, mutator func(*Film) error) (Film, error)
	DeleteFilm(id int) error
	CreateSeance(Seance) (Seance, error)
	UpdateSeance(id int, mutator func(*Seance) error) (Seance, error)
	DeleteSeance(id int) error
	CreateTicket(Ticket) (Ticket, error)
	UpdateTicket(id int, mutator func(*Ticket) error) (Ticket, error)
	DeleteTicket(id int) error
	CreateUser(User) (User, error)
	UpdateUser(id int, mutator func(*User) error) (User, error)
	DeleteUser(id int) error
}

// PersistentStore is the abstraction the service layer runs against. The Get
// methods read committed records outside any transaction.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetFilm(id int) (Film, bool)
	GetSeance(id int) (Seance, bool)
	GetTicket(id int) (Ticket, bool)
	GetUser(id int) (User, bool)
}
