package devbackend

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

const ctxUser = "user"

var errCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Issue signs an HS256 access token for u.
func (t *tokenIssuer) Issue(u *domain.User) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(u.ID, 10),
		"username": u.Username,
		"role":     u.Role,
		"iat":      now.Unix(),
	}
	if t.ttl > 0 {
		claims["exp"] = now.Add(t.ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// subject verifies raw and returns the user id it was issued for.
func (t *tokenIssuer) subject(raw string) (int64, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !tkn.Valid {
		return 0, errCredentials
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errCredentials
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, errCredentials
	}
	return id, nil
}

// requireUser validates the bearer token and loads the account it names.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")

		parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}

		id, err := s.tokens.subject(parts[1])
		if err != nil {
			return err
		}
		user, err := s.store.User(id)
		if err != nil {
			return errCredentials
		}
		c.Response().Header().Del("WWW-Authenticate")
		c.Set(ctxUser, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *domain.User {
	u, _ := c.Get(ctxUser).(*domain.User)
	return u
}
