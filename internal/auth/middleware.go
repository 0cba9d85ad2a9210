package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/types"
)

// Context keys for storing auth data
const (
	UserKey            = "auth_user"
	TokenKey           = "auth_token"
	IsAuthenticatedKey = "is_authenticated"

	tokenCookie = "token"
	cacheTTL    = time.Minute
)

// UserResolver maps a bearer token to the user it belongs to.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*types.User, error)
}

type cachedUser struct {
	user    *types.User
	expires time.Time
}

// Authenticator resolves bearer tokens through the backend and caches the
// answer briefly so a page's burst of API calls costs one lookup.
type Authenticator struct {
	resolver UserResolver
	mu       sync.Mutex
	cache    map[string]cachedUser
	now      func() time.Time
}

func NewAuthenticator(resolver UserResolver) *Authenticator {
	return &Authenticator{
		resolver: resolver,
		cache:    make(map[string]cachedUser),
		now:      time.Now,
	}
}

// Middleware loads the user when a token is present. It is optional: requests
// without a token, or with one the backend rejects, continue as guests.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(IsAuthenticatedKey, false)

			token := tokenFromRequest(c.Request())
			if token == "" {
				return next(c)
			}

			user, err := a.resolve(c.Request().Context(), token)
			if err != nil {
				slog.Debug("token rejected, continuing as guest", "error", err, "path", c.Request().URL.Path)
				return next(c)
			}

			c.Set(UserKey, user)
			c.Set(TokenKey, token)
			c.Set(IsAuthenticatedKey, true)
			return next(c)
		}
	}
}

func (a *Authenticator) resolve(ctx context.Context, token string) (*types.User, error) {
	now := a.now()

	a.mu.Lock()
	if hit, ok := a.cache[token]; ok && now.Before(hit.expires) {
		a.mu.Unlock()
		return hit.user, nil
	}
	a.mu.Unlock()

	user, err := a.resolver.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	for k, v := range a.cache {
		if !now.Before(v.expires) {
			delete(a.cache, k)
		}
	}
	a.cache[token] = cachedUser{user: user, expires: now.Add(cacheTTL)}
	a.mu.Unlock()

	return user, nil
}

// RequireLogin redirects guests to the login page, carrying the path they
// asked for so they come back after signing in.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return c.Redirect(http.StatusFound, LoginURL(c.Request().URL.RequestURI()))
			}
			return next(c)
		}
	}
}

// RequireAPIAuth rejects guests with 401.
func RequireAPIAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := RequireAuth(c); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects guests with 401 and signed-in shoppers without the
// admin role with 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := RequireAuth(c); err != nil {
				return err
			}
			if !IsAdmin(c) {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// LoginURL builds the login redirect for a return path.
func LoginURL(returnTo string) string {
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		returnTo = "/"
	}
	return "/login?redirect=" + url.QueryEscape(returnTo)
}

// tokenFromRequest reads the bearer token from the Authorization header,
// falling back to the token cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(tokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
