package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"cinemacore/internal/core"
)

const userKey = "user"

type claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t tokenIssuer) issue(userID int, admin bool) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(t.secret)
	return signed, exp, err
}

func (t tokenIssuer) parse(raw string) (int, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errors.New("invalid subject")
	}
	return id, nil
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, ok := s.svc.Authorize(req.Login, req.Password)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "wrong login or password")
	}
	dto, err := newUserDTO(user)
	if err != nil {
		return err
	}
	token, exp, err := s.tokens.issue(dto.ID, dto.IsAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("user logged in", "login", dto.Login)
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: dto})
}

// authenticate resolves the bearer token to a live user. A token whose user
// was deleted is refused.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		id, err := s.tokens.parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		user, ok := s.svc.User(id)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
		}
		c.Set(userKey, user)
		return next(c)
	}
}

// requireAdmin checks the stored admin flag rather than the token claim.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(userKey).(core.UserHandle)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		admin, err := user.IsAdmin()
		if err != nil || !admin {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return next(c)
	}
}
