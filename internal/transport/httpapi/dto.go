package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cinemacore/internal/core"
	"cinemacore/internal/hall"
	"cinemacore/pkg/domain"
)

type filmDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

func newFilmDTO(f domain.Film) filmDTO {
	return filmDTO{ID: f.ID, Name: f.Name, Description: f.Description, Duration: f.Duration}
}

// Start and end times use the HH:mm|dd.MM.yyyy layout in the service zone.
type seanceDTO struct {
	ID        int    `json:"id"`
	FilmID    int    `json:"film_id"`
	FilmName  string `json:"film_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s *Server) newSeanceDTO(info core.SeanceInfo) seanceDTO {
	loc := s.svc.Location()
	return seanceDTO{
		ID:        info.Seance.ID,
		FilmID:    info.Film.ID,
		FilmName:  info.Film.Name,
		StartTime: domain.FormatDateTime(info.Seance.StartTime.In(loc)),
		EndTime:   domain.FormatDateTime(info.End().In(loc)),
	}
}

type ticketDTO struct {
	ID        int  `json:"id"`
	SeanceID  int  `json:"seance_id"`
	Row       int  `json:"row"`
	Seat      int  `json:"seat"`
	SeatTaken bool `json:"seat_taken"`
}

func newTicketDTO(h core.TicketHandle) (ticketDTO, error) {
	t, err := h.Load()
	if err != nil {
		return ticketDTO{}, err
	}
	return ticketDTO{ID: t.ID, SeanceID: t.SeanceID, Row: t.Row, Seat: t.Seat, SeatTaken: t.SeatTaken}, nil
}

type userDTO struct {
	ID      int    `json:"id"`
	Login   string `json:"login"`
	IsAdmin bool   `json:"is_admin"`
}

func newUserDTO(h core.UserHandle) (userDTO, error) {
	u, err := h.Load()
	if err != nil {
		return userDTO{}, err
	}
	return userDTO{ID: u.ID, Login: u.Login, IsAdmin: u.IsAdmin}, nil
}

type seatDTO struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

func newSeatDTOs(seats []hall.Seat) []seatDTO {
	out := make([]seatDTO, 0, len(seats))
	for _, seat := range seats {
		out = append(out, seatDTO{Row: seat.Row, Seat: seat.Seat})
	}
	return out
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}
