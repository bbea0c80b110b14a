package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ticketRequest struct {
	Row  int  `json:"row"`
	Seat int  `json:"seat"`
	Take bool `json:"take"`
}

func (s *Server) sellTicket(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ticketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	h, err := s.svc.SellTicket(c.Request().Context(), id, req.Row, req.Seat, req.Take)
	if err != nil {
		return err
	}
	dto, err := newTicketDTO(h)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto)
}

func (s *Server) refundTicket(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h, err := s.svc.TicketByID(id)
	if err != nil {
		return err
	}
	if err := s.svc.Refund(c.Request().Context(), h); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) takeSeat(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h, err := s.svc.TicketByID(id)
	if err != nil {
		return err
	}
	if err := s.svc.TakeSeat(c.Request().Context(), h); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
