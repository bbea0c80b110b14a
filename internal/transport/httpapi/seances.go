package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"cinemacore/internal/core"
	"cinemacore/internal/hall"
	"cinemacore/pkg/domain"
)

type seanceRequest struct {
	FilmID    *int    `json:"film_id"`
	StartTime *string `json:"start_time"`
}

func (s *Server) listSeances(c echo.Context) error {
	filter, err := core.ParseSeanceFilter(c.QueryParam("filter"), s.svc.Now(), s.svc.Location())
	if err != nil {
		return err
	}
	if raw := c.QueryParam("film"); raw != "" {
		filmID, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid film")
		}
		filter = core.And(filter, core.FilmSeances(filmID))
	}
	infos := s.svc.SeanceInfos(filter)
	out := make([]seanceDTO, 0, len(infos))
	for _, info := range infos {
		out = append(out, s.newSeanceDTO(info))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) seance(c echo.Context) (core.SeanceHandle, error) {
	id, err := pathID(c)
	if err != nil {
		return core.SeanceHandle{}, err
	}
	return s.svc.SeanceByID(id)
}

func (s *Server) getSeance(c echo.Context) error {
	h, err := s.seance(c)
	if err != nil {
		return err
	}
	info, err := h.Info()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.newSeanceDTO(info))
}

func (s *Server) parseStart(raw string) (time.Time, error) {
	t, err := domain.ParseDateTime(raw, s.svc.Location())
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "start_time must look like 18:30|01.01.2030")
	}
	return t, nil
}

func (s *Server) createSeance(c echo.Context) error {
	var req seanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.FilmID == nil || req.StartTime == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "film_id and start_time required")
	}
	start, err := s.parseStart(*req.StartTime)
	if err != nil {
		return err
	}
	h, err := s.svc.NewSeanceByFilmID(c.Request().Context(), *req.FilmID, start)
	if err != nil {
		return err
	}
	info, err := h.Info()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.newSeanceDTO(info))
}

func (s *Server) updateSeance(c echo.Context) error {
	h, err := s.seance(c)
	if err != nil {
		return err
	}
	var req seanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if req.FilmID != nil {
		film, err := s.svc.FilmByID(*req.FilmID)
		if err != nil {
			return err
		}
		if err := h.SetFilm(ctx, film); err != nil {
			return err
		}
	}
	if req.StartTime != nil {
		start, err := s.parseStart(*req.StartTime)
		if err != nil {
			return err
		}
		if err := h.SetStartTime(ctx, start); err != nil {
			return err
		}
	}
	info, err := h.Info()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.newSeanceDTO(info))
}

func (s *Server) deleteSeance(c echo.Context) error {
	h, err := s.seance(c)
	if err != nil {
		return err
	}
	if err := h.Delete(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listSeats(c echo.Context) error {
	h, err := s.seance(c)
	if err != nil {
		return err
	}
	var seats []hall.Seat
	switch c.Param("kind") {
	case "free":
		seats, err = s.svc.FreeSeats(h)
	case "taken":
		seats, err = s.svc.TakenSeats(h)
	case "left":
		seats, err = s.svc.LeftSeats(h)
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown seat list")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSeatDTOs(seats))
}
