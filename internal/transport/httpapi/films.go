package httpapi

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

type filmRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration"`
}

func (s *Server) listFilms(c echo.Context) error {
	films := []filmDTO{}
	for h := range s.svc.Films() {
		f, err := h.Load()
		if err != nil {
			continue
		}
		films = append(films, newFilmDTO(f))
	}
	slices.SortFunc(films, func(a, b filmDTO) int { return cmp.Compare(a.ID, b.ID) })
	return c.JSON(http.StatusOK, films)
}

func (s *Server) getFilm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h, err := s.svc.FilmByID(id)
	if err != nil {
		return err
	}
	f, err := h.Load()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newFilmDTO(f))
}

func (s *Server) createFilm(c echo.Context) error {
	var req filmRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Name == nil || req.Duration == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name and duration required")
	}
	h, err := s.svc.NewFilm(c.Request().Context(), *req.Name, deref(req.Description), *req.Duration)
	if err != nil {
		return err
	}
	f, err := h.Load()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newFilmDTO(f))
}

// updateFilm applies the fields present in the body, one change at a time.
func (s *Server) updateFilm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h, err := s.svc.FilmByID(id)
	if err != nil {
		return err
	}
	var req filmRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if req.Name != nil {
		if err := h.SetName(ctx, *req.Name); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := h.SetDescription(ctx, *req.Description); err != nil {
			return err
		}
	}
	if req.Duration != nil {
		if err := h.SetDuration(ctx, *req.Duration); err != nil {
			return err
		}
	}
	f, err := h.Load()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newFilmDTO(f))
}

func (s *Server) deleteFilm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h, err := s.svc.FilmByID(id)
	if err != nil {
		return err
	}
	if err := h.Delete(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
