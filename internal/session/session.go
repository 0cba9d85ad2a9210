// Package session issues the anonymous browser session cookie that guest
// carts, promo state and browsing history hang off.
package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "session_id"
	contextKey = "session_id"
	maxAge     = 86400 * 30 // 30 days
)

// Middleware makes sure every request carries a session id, issuing a new
// cookie when the browser has none.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextKey, getOrCreate(c))
			return next(c)
		}
	}
}

// ID returns the request's session id, creating one when the middleware did
// not run.
func ID(c echo.Context) string {
	if id, ok := c.Get(contextKey).(string); ok && id != "" {
		return id
	}
	id := getOrCreate(c)
	c.Set(contextKey, id)
	return id
}

func getOrCreate(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err == nil && cookie.Value != "" {
		if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			return cookie.Value
		}
	}

	sessionID := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}
