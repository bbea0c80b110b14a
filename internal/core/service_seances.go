package core

import (
	"context"
	"iter"
	"slices"
	"time"

	"cinemacore/pkg/domain"
)

// NewSeance schedules film at start. The start is truncated to the minute and
// must neither be in the past nor collide with another running or upcoming seance.
func (s *Service) NewSeance(ctx context.Context, film FilmHandle, start time.Time) (SeanceHandle, error) {
	return s.NewSeanceByFilmID(ctx, film.id, start)
}

// NewSeanceByFilmID is NewSeance addressed by film id.
func (s *Service) NewSeanceByFilmID(ctx context.Context, filmID int, start time.Time) (SeanceHandle, error) {
	start = start.Truncate(time.Minute)
	var id int
	_, err := s.run(ctx, "create_seance", 0, func(tx Transaction) (int, error) {
		film, ok := tx.FindFilm(filmID)
		if !ok {
			return 0, domain.NewError(domain.ErrNotFound, EntityFilm, filmID, "no such film")
		}
		if err := s.schedule.ValidateNewSeance(tx, film, start, s.now()); err != nil {
			return 0, err
		}
		created, err := tx.CreateSeance(Seance{FilmID: filmID, StartTime: start})
		id = created.ID
		return id, err
	})
	if err != nil {
		return SeanceHandle{}, err
	}
	s.logger.Info("seance scheduled", "id", id, "film", filmID, "start", domain.FormatDateTime(start))
	return SeanceHandle{svc: s, id: id}, nil
}

// Seance returns a handle to seance id if it exists.
func (s *Service) Seance(id int) (SeanceHandle, bool) {
	if _, ok := s.store.GetSeance(id); !ok {
		return SeanceHandle{}, false
	}
	return SeanceHandle{svc: s, id: id}, true
}

// SeanceByID is Seance reporting a missing id as ErrNotFound.
func (s *Service) SeanceByID(id int) (SeanceHandle, error) {
	h, ok := s.Seance(id)
	if !ok {
		return SeanceHandle{}, domain.NewError(domain.ErrNotFound, EntitySeance, id, "no such seance")
	}
	return h, nil
}

// Seances yields handles of the seances accepted by filter, nil meaning all.
// Each range runs the filter against a consistent view of the current
// store; order is unspecified.
func (s *Service) Seances(filter SeanceFilter) iter.Seq[SeanceHandle] {
	if filter == nil {
		filter = AllSeances()
	}
	collect := func() []int {
		var list []int
		_ = s.view(context.Background(), func(v TransactionView) error {
			for seance := range v.Seances() {
				film, ok := v.FindFilm(seance.FilmID)
				if !ok {
					continue
				}
				if filter(SeanceInfo{Seance: seance, Film: film}) {
					list = append(list, seance.ID)
				}
			}
			return nil
		})
		return list
	}
	return handleSeq(s, collect, func(svc *Service, id int) SeanceHandle { return SeanceHandle{svc: svc, id: id} })
}

// SeanceInfos returns the seances accepted by filter ordered by start time then id.
func (s *Service) SeanceInfos(filter SeanceFilter) []SeanceInfo {
	if filter == nil {
		filter = AllSeances()
	}
	var out []SeanceInfo
	_ = s.view(context.Background(), func(v TransactionView) error {
		for seance := range v.Seances() {
			film, ok := v.FindFilm(seance.FilmID)
			if !ok {
				continue
			}
			if info := (SeanceInfo{Seance: seance, Film: film}); filter(info) {
				out = append(out, info)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b SeanceInfo) int {
		if c := a.Seance.StartTime.Compare(b.Seance.StartTime); c != 0 {
			return c
		}
		return a.Seance.ID - b.Seance.ID
	})
	return out
}

func (s *Service) seanceHandles(keep func(Seance) bool) iter.Seq[SeanceHandle] {
	collect := func() []int {
		var list []int
		_ = s.view(context.Background(), func(v TransactionView) error {
			for seance := range v.Seances() {
				if keep(seance) {
					list = append(list, seance.ID)
				}
			}
			return nil
		})
		return list
	}
	return handleSeq(s, collect, func(svc *Service, id int) SeanceHandle { return SeanceHandle{svc: svc, id: id} })
}

func (s *Service) ticketHandles(keep func(Ticket) bool) iter.Seq[TicketHandle] {
	collect := func() []int {
		var list []int
		_ = s.view(context.Background(), func(v TransactionView) error {
			for t := range v.Tickets() {
				if keep(t) {
					list = append(list, t.ID)
				}
			}
			return nil
		})
		return list
	}
	return handleSeq(s, collect, func(svc *Service, id int) TicketHandle { return TicketHandle{svc: svc, id: id} })
}

// handleSeq collects ids afresh on every range, then yields without holding
// the store lock.
func handleSeq[H any](s *Service, collect func() []int, mk func(*Service, int) H) iter.Seq[H] {
	return func(yield func(H) bool) {
		for _, id := range collect() {
			if !yield(mk(s, id)) {
				return
			}
		}
	}
}
