package core

import (
	"context"
	"iter"

	"cinemacore/pkg/domain"
)

// NewFilm creates a film. Names are unique and durations positive.
func (s *Service) NewFilm(ctx context.Context, name, description string, duration int) (FilmHandle, error) {
	if name == "" {
		return FilmHandle{}, domain.NewError(domain.ErrInvalid, EntityFilm, 0, "name must not be empty")
	}
	if duration <= 0 {
		return FilmHandle{}, domain.NewError(domain.ErrInvalid, EntityFilm, 0, "duration must be positive, got %d", duration)
	}
	var id int
	_, err := s.run(ctx, "create_film", 0, func(tx Transaction) (int, error) {
		created, err := tx.CreateFilm(Film{Name: name, Description: description, Duration: duration})
		id = created.ID
		return id, err
	})
	if err != nil {
		return FilmHandle{}, err
	}
	s.logger.Info("film created", "id", id, "name", name)
	return FilmHandle{svc: s, id: id}, nil
}

// Film returns a handle to film id if it exists.
func (s *Service) Film(id int) (FilmHandle, bool) {
	if _, ok := s.store.GetFilm(id); !ok {
		return FilmHandle{}, false
	}
	return FilmHandle{svc: s, id: id}, true
}

// FilmByID is Film reporting a missing id as ErrNotFound.
func (s *Service) FilmByID(id int) (FilmHandle, error) {
	h, ok := s.Film(id)
	if !ok {
		return FilmHandle{}, domain.NewError(domain.ErrNotFound, EntityFilm, id, "no such film")
	}
	return h, nil
}

// Films yields a handle per current film in unspecified order.
func (s *Service) Films() iter.Seq[FilmHandle] {
	collect := func() []int { return ids(s, TransactionView.Films, func(f Film) int { return f.ID }) }
	return handleSeq(s, collect, func(svc *Service, id int) FilmHandle { return FilmHandle{svc: svc, id: id} })
}

// FindFilmByName returns the film named name.
func (s *Service) FindFilmByName(name string) (FilmHandle, error) {
	id := 0
	_ = s.view(context.Background(), func(v TransactionView) error {
		for f := range v.Films() {
			if f.Name == name {
				id = f.ID
				break
			}
		}
		return nil
	})
	if id == 0 {
		return FilmHandle{}, domain.NewError(domain.ErrNotFound, EntityFilm, 0, "no film named %q", name)
	}
	return FilmHandle{svc: s, id: id}, nil
}
