// Package csrf guards cookie-authenticated writes with a double-submit token.
// Requests carrying a bearer token, or no session cookie at all, are not
// subject to the check because a browser cannot forge them cross-site.
package csrf

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Config struct {
	CookieName    string
	HeaderName    string
	SessionCookie string
	Secure        bool
	MaxAge        time.Duration
}

func DefaultConfig() Config {
	return Config{
		CookieName:    "XSRF-TOKEN",
		HeaderName:    "X-CSRF-Token",
		SessionCookie: "accessToken",
		MaxAge:        24 * time.Hour,
	}
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = def.SessionCookie
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token := readCookie(req, cfg.CookieName)
			if token == "" {
				token = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Secure:   cfg.Secure,
					MaxAge:   int(cfg.MaxAge.Seconds()),
					SameSite: http.SameSiteLaxMode,
				})
			}

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if strings.HasPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer ") ||
				readCookie(req, cfg.SessionCookie) == "" {
				return next(c)
			}

			provided := req.Header.Get(cfg.HeaderName)
			if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}
			return next(c)
		}
	}
}

func readCookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
