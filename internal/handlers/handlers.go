package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/session"
)

// ownerFor identifies whose cart the request operates on.
func ownerFor(c echo.Context) cart.Owner {
	owner := cart.Owner{SessionID: session.ID(c)}
	if user, ok := auth.GetUser(c); ok {
		owner.UserID = user.ID
		owner.Token = auth.GetToken(c)
	}
	return owner
}

// backendError turns a backend failure into the error shown to the shopper.
// Client errors pass the backend's message through; anything else is logged
// and reported as a bad gateway.
func backendError(err error, fallback string) error {
	if errors.Is(err, backend.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, backend.Message(err, "Not found"))
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		return echo.NewHTTPError(status, backend.Message(err, fallback))
	}

	slog.Error(fallback, "error", err)
	return echo.NewHTTPError(http.StatusBadGateway, fallback)
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
