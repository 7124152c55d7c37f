package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

const (
	CookieName = "accessToken"

	ctxUserID = "user_id"
	ctxRole   = "role"
)

type Middleware struct {
	JWTSecret []byte
}

func New(secret []byte) *Middleware {
	return &Middleware{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *Middleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)
		return next(c)
	}
}

// bearer reads the token from the Authorization header, then the cookie.
func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if ck, err := c.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// UserID returns the authenticated user set by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}
