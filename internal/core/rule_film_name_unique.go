package core

import (
	"cinemacore/pkg/domain"
	"context"
	"fmt"
)

// NewFilmNameUniqueRule rejects a film whose name matches another live film.
func NewFilmNameUniqueRule() domain.Rule {
	return filmNameUniqueRule{}
}

type filmNameUniqueRule struct{}

func (filmNameUniqueRule) Name() string { return "film_name_unique" }

func (filmNameUniqueRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[int]struct{})
	for _, film := range changed[domain.Film](changes, domain.EntityFilm) {
		if _, dup := seen[film.ID]; dup {
			continue
		}
		seen[film.ID] = struct{}{}
		current, ok := view.FindFilm(film.ID)
		if !ok {
			continue
		}
		for other := range view.Films() {
			if other.ID != current.ID && other.Name == current.Name {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "film_name_unique",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("film named %q already exists", current.Name),
					Entity:   domain.EntityFilm,
					EntityID: current.ID,
					Err:      domain.ErrUniqueConstraint,
				})
				break
			}
		}
	}
	return res, nil
}
