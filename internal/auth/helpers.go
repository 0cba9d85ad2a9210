package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/types"
)

// GetUser retrieves the authenticated user from context
func GetUser(c echo.Context) (*types.User, bool) {
	user, ok := c.Get(UserKey).(*types.User)
	return user, ok && user != nil
}

// GetToken retrieves the bearer token the user authenticated with
func GetToken(c echo.Context) string {
	token, _ := c.Get(TokenKey).(string)
	return token
}

// IsAuthenticated checks if the current request is authenticated
func IsAuthenticated(c echo.Context) bool {
	isAuth, _ := c.Get(IsAuthenticatedKey).(bool)
	return isAuth
}

// IsAdmin checks if the authenticated user has the admin role
func IsAdmin(c echo.Context) bool {
	user, ok := GetUser(c)
	return ok && user.Role == "admin"
}

// RequireAuth is a helper that checks auth and returns error if not authenticated
// Use this in handlers that need auth
func RequireAuth(c echo.Context) error {
	if !IsAuthenticated(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return nil
}
