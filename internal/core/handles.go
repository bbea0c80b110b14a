package core

import (
	"context"
	"iter"
	"time"

	"cinemacore/pkg/domain"
)

// FilmHandle is a live reference to a stored film. Reads always observe the
// committed record; writes are validated and committed atomically.
type FilmHandle struct {
	svc *Service
	id  int
}

// SeanceHandle is a live reference to a stored seance.
type SeanceHandle struct {
	svc *Service
	id  int
}

// TicketHandle is a live reference to a stored ticket.
type TicketHandle struct {
	svc *Service
	id  int
}

// UserHandle is a live reference to a stored user.
type UserHandle struct {
	svc *Service
	id  int
}

// ID returns the film id.
func (h FilmHandle) ID() int { return h.id }

// Load returns the current record or a DeletedReference error.
func (h FilmHandle) Load() (Film, error) {
	f, ok := h.svc.store.GetFilm(h.id)
	if !ok {
		return Film{}, domain.DeletedReference(EntityFilm, h.id)
	}
	return f, nil
}

// IsDeleted reports whether the film no longer exists.
func (h FilmHandle) IsDeleted() bool {
	_, ok := h.svc.store.GetFilm(h.id)
	return !ok
}

// Name returns the film name.
func (h FilmHandle) Name() (string, error) {
	f, err := h.Load()
	return f.Name, err
}

// Description returns the film description.
func (h FilmHandle) Description() (string, error) {
	f, err := h.Load()
	return f.Description, err
}

// Duration returns the film duration in minutes.
func (h FilmHandle) Duration() (int, error) {
	f, err := h.Load()
	return f.Duration, err
}

// SetName renames the film. Names are unique among films.
func (h FilmHandle) SetName(ctx context.Context, name string) error {
	_, err := h.svc.run(ctx, "update_film", h.id, func(tx Transaction) (int, error) {
		_, err := tx.UpdateFilm(h.id, func(f *Film) error {
			if name == "" {
				return domain.NewError(domain.ErrInvalid, EntityFilm, h.id, "name must not be empty")
			}
			f.Name = name
			return nil
		})
		return h.id, err
	})
	return err
}

// SetDescription replaces the film description.
func (h FilmHandle) SetDescription(ctx context.Context, description string) error {
	_, err := h.svc.run(ctx, "update_film", h.id, func(tx Transaction) (int, error) {
		_, err := tx.UpdateFilm(h.id, func(f *Film) error {
			f.Description = description
			return nil
		})
		return h.id, err
	})
	return err
}

// SetDuration changes the film duration after re-checking its upcoming seances.
func (h FilmHandle) SetDuration(ctx context.Context, minutes int) error {
	_, err := h.svc.run(ctx, "update_film", h.id, func(tx Transaction) (int, error) {
		film, ok := tx.FindFilm(h.id)
		if !ok {
			return h.id, domain.DeletedReference(EntityFilm, h.id)
		}
		if err := h.svc.schedule.ValidateDurationChange(tx, film, minutes, h.svc.now()); err != nil {
			return h.id, err
		}
		_, err := tx.UpdateFilm(h.id, func(f *Film) error {
			f.Duration = minutes
			return nil
		})
		return h.id, err
	})
	return err
}

// Seances yields the film's seances.
func (h FilmHandle) Seances() iter.Seq[SeanceHandle] {
	return h.svc.seanceHandles(func(s Seance) bool { return s.FilmID == h.id })
}

// Delete removes the film with its seances and their tickets.
func (h FilmHandle) Delete(ctx context.Context) error {
	_, err := h.svc.run(ctx, "delete_film", h.id, func(tx Transaction) (int, error) {
		return h.id, tx.DeleteFilm(h.id)
	})
	return err
}

// ID returns the seance id.
func (h SeanceHandle) ID() int { return h.id }

// Load returns the current record or a DeletedReference error.
func (h SeanceHandle) Load() (Seance, error) {
	s, ok := h.svc.store.GetSeance(h.id)
	if !ok {
		return Seance{}, domain.DeletedReference(EntitySeance, h.id)
	}
	return s, nil
}

// IsDeleted reports whether the seance no longer exists.
func (h SeanceHandle) IsDeleted() bool {
	_, ok := h.svc.store.GetSeance(h.id)
	return !ok
}

// Film returns a handle to the seance's film.
func (h SeanceHandle) Film() (FilmHandle, error) {
	s, err := h.Load()
	if err != nil {
		return FilmHandle{}, err
	}
	return FilmHandle{svc: h.svc, id: s.FilmID}, nil
}

// StartTime returns the seance start.
func (h SeanceHandle) StartTime() (time.Time, error) {
	s, err := h.Load()
	return s.StartTime, err
}

// EndTime returns the seance start plus its film duration.
func (h SeanceHandle) EndTime() (time.Time, error) {
	info, err := h.Info()
	if err != nil {
		return time.Time{}, err
	}
	return info.End(), nil
}

// Info returns the seance together with its film.
func (h SeanceHandle) Info() (SeanceInfo, error) {
	var info SeanceInfo
	err := h.svc.view(context.Background(), func(v TransactionView) error {
		var err error
		info, err = seanceInfo(v, h.id)
		return err
	})
	return info, err
}

// SetStartTime moves the seance after checking the hall is free.
func (h SeanceHandle) SetStartTime(ctx context.Context, start time.Time) error {
	start = start.Truncate(time.Minute)
	_, err := h.svc.run(ctx, "update_seance", h.id, func(tx Transaction) (int, error) {
		info, err := seanceInfo(tx, h.id)
		if err != nil {
			return h.id, err
		}
		if err := h.svc.schedule.ValidateStartTimeChange(tx, info.Seance, info.Film, start, h.svc.now()); err != nil {
			return h.id, err
		}
		_, err = tx.UpdateSeance(h.id, func(s *Seance) error {
			s.StartTime = start
			return nil
		})
		return h.id, err
	})
	return err
}

// SetFilm screens another film in the seance's slot after checking the hall is free.
func (h SeanceHandle) SetFilm(ctx context.Context, film FilmHandle) error {
	_, err := h.svc.run(ctx, "update_seance", h.id, func(tx Transaction) (int, error) {
		seance, ok := tx.FindSeance(h.id)
		if !ok {
			return h.id, domain.DeletedReference(EntitySeance, h.id)
		}
		f, ok := tx.FindFilm(film.id)
		if !ok {
			return h.id, domain.DeletedReference(EntityFilm, film.id)
		}
		if err := h.svc.schedule.ValidateStartTimeChange(tx, seance, f, seance.StartTime, h.svc.now()); err != nil {
			return h.id, err
		}
		_, err := tx.UpdateSeance(h.id, func(s *Seance) error {
			s.FilmID = f.ID
			return nil
		})
		return h.id, err
	})
	return err
}

// Tickets yields the seance's tickets.
func (h SeanceHandle) Tickets() iter.Seq[TicketHandle] {
	return h.svc.ticketHandles(func(t Ticket) bool { return t.SeanceID == h.id })
}

// Delete removes the seance with its tickets.
func (h SeanceHandle) Delete(ctx context.Context) error {
	_, err := h.svc.run(ctx, "delete_seance", h.id, func(tx Transaction) (int, error) {
		return h.id, tx.DeleteSeance(h.id)
	})
	return err
}

// ID returns the ticket id.
func (h TicketHandle) ID() int { return h.id }

// Load returns the current record or a DeletedReference error.
func (h TicketHandle) Load() (Ticket, error) {
	t, ok := h.svc.store.GetTicket(h.id)
	if !ok {
		return Ticket{}, domain.DeletedReference(EntityTicket, h.id)
	}
	return t, nil
}

// IsDeleted reports whether the ticket no longer exists.
func (h TicketHandle) IsDeleted() bool {
	_, ok := h.svc.store.GetTicket(h.id)
	return !ok
}

// Seance returns a handle to the ticket's seance.
func (h TicketHandle) Seance() (SeanceHandle, error) {
	t, err := h.Load()
	if err != nil {
		return SeanceHandle{}, err
	}
	return SeanceHandle{svc: h.svc, id: t.SeanceID}, nil
}

// Row returns the ticket row.
func (h TicketHandle) Row() (int, error) {
	t, err := h.Load()
	return t.Row, err
}

// Seat returns the ticket seat within its row.
func (h TicketHandle) Seat() (int, error) {
	t, err := h.Load()
	return t.Seat, err
}

// SeatTaken reports whether the holder has already taken the seat.
func (h TicketHandle) SeatTaken() (bool, error) {
	t, err := h.Load()
	return t.SeatTaken, err
}

// Delete removes the ticket without the refund check.
func (h TicketHandle) Delete(ctx context.Context) error {
	_, err := h.svc.run(ctx, "delete_ticket", h.id, func(tx Transaction) (int, error) {
		return h.id, tx.DeleteTicket(h.id)
	})
	return err
}

// ID returns the user id.
func (h UserHandle) ID() int { return h.id }

// Load returns the current record or a DeletedReference error.
func (h UserHandle) Load() (User, error) {
	u, ok := h.svc.store.GetUser(h.id)
	if !ok {
		return User{}, domain.DeletedReference(EntityUser, h.id)
	}
	return u, nil
}

// IsDeleted reports whether the user no longer exists.
func (h UserHandle) IsDeleted() bool {
	_, ok := h.svc.store.GetUser(h.id)
	return !ok
}

// Login returns the user login.
func (h UserHandle) Login() (string, error) {
	u, err := h.Load()
	return u.Login, err
}

// IsAdmin reports whether the user may administer films and seances.
func (h UserHandle) IsAdmin() (bool, error) {
	u, err := h.Load()
	return u.IsAdmin, err
}

// SetLogin renames the user. Logins are unique.
func (h UserHandle) SetLogin(ctx context.Context, login string) error {
	return h.update(ctx, func(u *User) error {
		if login == "" {
			return domain.NewError(domain.ErrInvalid, EntityUser, h.id, "login must not be empty")
		}
		u.Login = login
		return nil
	})
}

// SetPassword stores the hash of password.
func (h UserHandle) SetPassword(ctx context.Context, password string) error {
	hash, err := h.svc.hasher.Hash(password)
	if err != nil {
		return err
	}
	return h.update(ctx, func(u *User) error {
		u.PasswordHash = hash
		return nil
	})
}

// SetAdmin grants or revokes admin rights.
func (h UserHandle) SetAdmin(ctx context.Context, admin bool) error {
	return h.update(ctx, func(u *User) error {
		u.IsAdmin = admin
		return nil
	})
}

func (h UserHandle) update(ctx context.Context, mutator func(*User) error) error {
	_, err := h.svc.run(ctx, "update_user", h.id, func(tx Transaction) (int, error) {
		_, err := tx.UpdateUser(h.id, mutator)
		return h.id, err
	})
	return err
}

// Delete removes the user.
func (h UserHandle) Delete(ctx context.Context) error {
	_, err := h.svc.run(ctx, "delete_user", h.id, func(tx Transaction) (int, error) {
		return h.id, tx.DeleteUser(h.id)
	})
	return err
}
