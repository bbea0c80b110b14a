package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type userRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (s *Server) createUser(c echo.Context) error {
	var req userRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Login == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "login and password required")
	}
	h, err := s.svc.NewUser(c.Request().Context(), req.Login, req.Password, req.IsAdmin)
	if err != nil {
		return err
	}
	dto, err := newUserDTO(h)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto)
}

func (s *Server) changePassword(c echo.Context) error {
	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password required")
	}
	if err := s.svc.ChangePassword(c.Request().Context(), c.Param("login"), req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
