// Package memory provides the in-memory implementation of the core persistence
// store. Durable backends snapshot and restore its state.
package memory

import (
	"cinemacore/pkg/domain"
	"context"
	"iter"
	"maps"
	"sync"
	"time"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var (
	_ domain.PersistentStore = (*Store)(nil)
	_ domain.Transaction     = (*transaction)(nil)
)

type (
	// Film aliases domain.Film for in-memory persistence operations.
	Film = domain.Film
	// Seance aliases domain.Seance.
	Seance = domain.Seance
	// Ticket aliases domain.Ticket.
	Ticket = domain.Ticket
	// User aliases domain.User.
	User = domain.User
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	films   *RecordStore[Film]
	seances *RecordStore[Seance]
	tickets *RecordStore[Ticket]
	users   *RecordStore[User]
}

// Snapshot captures a point-in-time clone of the store state, including the
// next id of every kind.
type Snapshot struct {
	Films   map[int]Film
	Seances map[int]Seance
	Tickets map[int]Ticket
	Users   map[int]User

	FilmsAutoIncrement   int
	SeancesAutoIncrement int
	TicketsAutoIncrement int
	UsersAutoIncrement   int
}

func newMemoryState() memoryState {
	return memoryState{
		films:   NewRecordStore[Film](),
		seances: NewRecordStore[Seance](),
		tickets: NewRecordStore[Ticket](),
		users:   NewRecordStore[User](),
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		films:   s.films.clone(),
		seances: s.seances.clone(),
		tickets: s.tickets.clone(),
		users:   s.users.clone(),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Films:                maps.Collect(state.films.All()),
		Seances:              maps.Collect(state.seances.All()),
		Tickets:              maps.Collect(state.tickets.All()),
		Users:                maps.Collect(state.users.All()),
		FilmsAutoIncrement:   state.films.NextID(),
		SeancesAutoIncrement: state.seances.NextID(),
		TicketsAutoIncrement: state.tickets.NextID(),
		UsersAutoIncrement:   state.users.NextID(),
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	return memoryState{
		films:   &RecordStore[Film]{rows: s.Films, next: s.FilmsAutoIncrement},
		seances: &RecordStore[Seance]{rows: s.Seances, next: s.SeancesAutoIncrement},
		tickets: &RecordStore[Ticket]{rows: s.Tickets, next: s.TicketsAutoIncrement},
		users:   &RecordStore[User]{rows: s.Users, next: s.UsersAutoIncrement},
	}
}

// migrateSnapshot normalizes a loaded snapshot. Nil maps become empty and
// counters are raised past the largest stored id, including ids of dangling
// seances and tickets that are then dropped.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	snapshot.Films = maps.Clone(snapshot.Films)
	snapshot.Seances = maps.Clone(snapshot.Seances)
	snapshot.Tickets = maps.Clone(snapshot.Tickets)
	snapshot.Users = maps.Clone(snapshot.Users)
	if snapshot.Films == nil {
		snapshot.Films = map[int]Film{}
	}
	if snapshot.Seances == nil {
		snapshot.Seances = map[int]Seance{}
	}
	if snapshot.Tickets == nil {
		snapshot.Tickets = map[int]Ticket{}
	}
	if snapshot.Users == nil {
		snapshot.Users = map[int]User{}
	}

	snapshot.FilmsAutoIncrement = nextCounter(snapshot.FilmsAutoIncrement, maps.Keys(snapshot.Films))
	snapshot.SeancesAutoIncrement = nextCounter(snapshot.SeancesAutoIncrement, maps.Keys(snapshot.Seances))
	snapshot.TicketsAutoIncrement = nextCounter(snapshot.TicketsAutoIncrement, maps.Keys(snapshot.Tickets))
	snapshot.UsersAutoIncrement = nextCounter(snapshot.UsersAutoIncrement, maps.Keys(snapshot.Users))

	for id, film := range snapshot.Films {
		film.ID = id
		snapshot.Films[id] = film
	}
	for id, seance := range snapshot.Seances {
		if _, ok := snapshot.Films[seance.FilmID]; !ok {
			delete(snapshot.Seances, id)
			continue
		}
		seance.ID = id
		snapshot.Seances[id] = seance
	}
	for id, ticket := range snapshot.Tickets {
		if _, ok := snapshot.Seances[ticket.SeanceID]; !ok {
			delete(snapshot.Tickets, id)
			continue
		}
		ticket.ID = id
		snapshot.Tickets[id] = ticket
	}
	for id, user := range snapshot.Users {
		user.ID = id
		snapshot.Users[id] = user
	}

	return snapshot
}

func nextCounter(stored int, ids iter.Seq[int]) int {
	next := max(stored, 1)
	for id := range ids {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNowFunc overrides the clock used to stamp transactions.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// Counts reports the number of live records per kind.
func (s *Store) Counts() map[domain.EntityType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[domain.EntityType]int{
		domain.EntityFilm:   s.state.films.Len(),
		domain.EntitySeance: s.state.seances.Len(),
		domain.EntityTicket: s.state.tickets.Len(),
		domain.EntityUser:   s.state.users.Len(),
	}
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the live state only when fn succeeds and no rule blocks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		transactionView: transactionView{state: s.state.clone()},
		now:             s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, tx.transactionView, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against the committed state under a read lock. Sequences
// obtained from the view must not be used after fn returns.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(transactionView{state: s.state})
}

// GetFilm returns the committed film under id.
func (s *Store) GetFilm(id int) (Film, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.films.Get(id)
}

// GetSeance returns the committed seance under id.
func (s *Store) GetSeance(id int) (Seance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.seances.Get(id)
}

// GetTicket returns the committed ticket under id.
func (s *Store) GetTicket(id int) (Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.tickets.Get(id)
}

// GetUser returns the committed user under id.
func (s *Store) GetUser(id int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.users.Get(id)
}

type transactionView struct {
	state memoryState
}

func (v transactionView) Films() iter.Seq[Film]     { return v.state.films.Values() }
func (v transactionView) Seances() iter.Seq[Seance] { return v.state.seances.Values() }
func (v transactionView) Tickets() iter.Seq[Ticket] { return v.state.tickets.Values() }
func (v transactionView) Users() iter.Seq[User]     { return v.state.users.Values() }

func (v transactionView) FindFilm(id int) (Film, bool)     { return v.state.films.Get(id) }
func (v transactionView) FindSeance(id int) (Seance, bool) { return v.state.seances.Get(id) }
func (v transactionView) FindTicket(id int) (Ticket, bool) { return v.state.tickets.Get(id) }
func (v transactionView) FindUser(id int) (User, bool)     { return v.state.users.Get(id) }

// transaction represents a mutation set applied to a cloned state.
type transaction struct {
	transactionView
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Now returns the instant captured when the transaction started.
func (tx *transaction) Now() time.Time { return tx.now }

// CreateFilm stores a new film under the next film id.
func (tx *transaction) CreateFilm(f Film) (Film, error) {
	f.ID = tx.state.films.Allocate()
	tx.state.films.Put(f.ID, f)
	tx.recordChange(Change{Entity: domain.EntityFilm, Action: domain.ActionCreate, After: f})
	return f, nil
}

// UpdateFilm mutates a film using the provided mutator function.
func (tx *transaction) UpdateFilm(id int, mutator func(*Film) error) (Film, error) {
	current, ok := tx.state.films.Get(id)
	if !ok {
		return Film{}, domain.DeletedReference(domain.EntityFilm, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Film{}, err
	}
	current.ID = id
	tx.state.films.Put(id, current)
	tx.recordChange(Change{Entity: domain.EntityFilm, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteFilm removes a film together with its seances and their tickets.
func (tx *transaction) DeleteFilm(id int) error {
	current, ok := tx.state.films.Get(id)
	if !ok {
		return domain.DeletedReference(domain.EntityFilm, id)
	}
	for _, seanceID := range tx.state.seances.CollectIDs(func(s Seance) bool { return s.FilmID == id }) {
		if err := tx.DeleteSeance(seanceID); err != nil {
			return err
		}
	}
	tx.state.films.Delete(id)
	tx.recordChange(Change{Entity: domain.EntityFilm, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateSeance stores a new seance. The referenced film must exist.
func (tx *transaction) CreateSeance(s Seance) (Seance, error) {
	if !tx.state.films.Has(s.FilmID) {
		return Seance{}, domain.NewError(domain.ErrInvalid, domain.EntitySeance, 0, "film %d does not exist", s.FilmID)
	}
	s.ID = tx.state.seances.Allocate()
	tx.state.seances.Put(s.ID, s)
	tx.recordChange(Change{Entity: domain.EntitySeance, Action: domain.ActionCreate, After: s})
	return s, nil
}

// UpdateSeance mutates a seance using the provided mutator function.
func (tx *transaction) UpdateSeance(id int, mutator func(*Seance) error) (Seance, error) {
	current, ok := tx.state.seances.Get(id)
	if !ok {
		return Seance{}, domain.DeletedReference(domain.EntitySeance, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Seance{}, err
	}
	if !tx.state.films.Has(current.FilmID) {
		return Seance{}, domain.NewError(domain.ErrInvalid, domain.EntitySeance, id, "film %d does not exist", current.FilmID)
	}
	current.ID = id
	tx.state.seances.Put(id, current)
	tx.recordChange(Change{Entity: domain.EntitySeance, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteSeance removes a seance together with its tickets.
func (tx *transaction) DeleteSeance(id int) error {
	current, ok := tx.state.seances.Get(id)
	if !ok {
		return domain.DeletedReference(domain.EntitySeance, id)
	}
	for _, ticketID := range tx.state.tickets.CollectIDs(func(t Ticket) bool { return t.SeanceID == id }) {
		if err := tx.DeleteTicket(ticketID); err != nil {
			return err
		}
	}
	tx.state.seances.Delete(id)
	tx.recordChange(Change{Entity: domain.EntitySeance, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateTicket stores a new ticket. The referenced seance must exist.
func (tx *transaction) CreateTicket(t Ticket) (Ticket, error) {
	if !tx.state.seances.Has(t.SeanceID) {
		return Ticket{}, domain.NewError(domain.ErrInvalid, domain.EntityTicket, 0, "seance %d does not exist", t.SeanceID)
	}
	t.ID = tx.state.tickets.Allocate()
	tx.state.tickets.Put(t.ID, t)
	tx.recordChange(Change{Entity: domain.EntityTicket, Action: domain.ActionCreate, After: t})
	return t, nil
}

// UpdateTicket mutates a ticket. The seance reference cannot be moved to a missing seance.
func (tx *transaction) UpdateTicket(id int, mutator func(*Ticket) error) (Ticket, error) {
	current, ok := tx.state.tickets.Get(id)
	if !ok {
		return Ticket{}, domain.DeletedReference(domain.EntityTicket, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Ticket{}, err
	}
	if !tx.state.seances.Has(current.SeanceID) {
		return Ticket{}, domain.NewError(domain.ErrInvalid, domain.EntityTicket, id, "seance %d does not exist", current.SeanceID)
	}
	current.ID = id
	tx.state.tickets.Put(id, current)
	tx.recordChange(Change{Entity: domain.EntityTicket, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteTicket removes a ticket.
func (tx *transaction) DeleteTicket(id int) error {
	current, ok := tx.state.tickets.Get(id)
	if !ok {
		return domain.DeletedReference(domain.EntityTicket, id)
	}
	tx.state.tickets.Delete(id)
	tx.recordChange(Change{Entity: domain.EntityTicket, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateUser stores a new user.
func (tx *transaction) CreateUser(u User) (User, error) {
	u.ID = tx.state.users.Allocate()
	tx.state.users.Put(u.ID, u)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: u})
	return u, nil
}

// UpdateUser mutates a user using the provided mutator function.
func (tx *transaction) UpdateUser(id int, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users.Get(id)
	if !ok {
		return User{}, domain.DeletedReference(domain.EntityUser, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	tx.state.users.Put(id, current)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteUser removes a user.
func (tx *transaction) DeleteUser(id int) error {
	current, ok := tx.state.users.Get(id)
	if !ok {
		return domain.DeletedReference(domain.EntityUser, id)
	}
	tx.state.users.Delete(id)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionDelete, Before: current})
	return nil
}
