package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/types"
)

// AccountHandler serves the signed-in user's wishlist, address book and
// notifications. Every route sits behind the API auth middleware.
type AccountHandler struct {
	backend *backend.Client
}

func NewAccountHandler(backend *backend.Client) *AccountHandler {
	return &AccountHandler{backend: backend}
}

func (h *AccountHandler) HandleMe(c echo.Context) error {
	user, _ := auth.GetUser(c)
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func wishlistJSON(c echo.Context, wishlist []types.Product) error {
	if wishlist == nil {
		wishlist = []types.Product{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"wishlist": wishlist})
}

func (h *AccountHandler) HandleGetWishlist(c echo.Context) error {
	wishlist, err := h.backend.GetWishlist(c.Request().Context(), auth.GetToken(c))
	if err != nil {
		return backendError(err, "Failed to load wishlist")
	}
	return wishlistJSON(c, wishlist)
}

func (h *AccountHandler) HandleAddToWishlist(c echo.Context) error {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return badRequest("Product ID is required")
	}

	wishlist, err := h.backend.AddToWishlist(c.Request().Context(), auth.GetToken(c), req.ProductID)
	if err != nil {
		return backendError(err, "Failed to update wishlist")
	}
	return wishlistJSON(c, wishlist)
}

func (h *AccountHandler) HandleRemoveFromWishlist(c echo.Context) error {
	wishlist, err := h.backend.RemoveFromWishlist(c.Request().Context(), auth.GetToken(c), c.Param("id"))
	if err != nil {
		return backendError(err, "Failed to update wishlist")
	}
	return wishlistJSON(c, wishlist)
}

func addressesJSON(c echo.Context, addresses []types.Address) error {
	if addresses == nil {
		addresses = []types.Address{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"addresses": addresses})
}

func (h *AccountHandler) HandleListAddresses(c echo.Context) error {
	addresses, err := h.backend.ListAddresses(c.Request().Context(), auth.GetToken(c))
	if err != nil {
		return backendError(err, "Failed to load addresses")
	}
	return addressesJSON(c, addresses)
}

func (h *AccountHandler) HandleAddAddress(c echo.Context) error {
	var a types.Address
	if err := c.Bind(&a); err != nil {
		return badRequest("Invalid request")
	}
	if !a.Complete() {
		return badRequest("Please complete the address form")
	}

	addresses, err := h.backend.AddAddress(c.Request().Context(), auth.GetToken(c), a)
	if err != nil {
		return backendError(err, "Failed to save address")
	}
	return addressesJSON(c, addresses)
}

func (h *AccountHandler) HandleUpdateAddress(c echo.Context) error {
	var a types.Address
	if err := c.Bind(&a); err != nil {
		return badRequest("Invalid request")
	}
	if !a.Complete() {
		return badRequest("Please complete the address form")
	}

	addresses, err := h.backend.UpdateAddress(c.Request().Context(), auth.GetToken(c), c.Param("id"), a)
	if err != nil {
		return backendError(err, "Failed to update address")
	}
	return addressesJSON(c, addresses)
}

func (h *AccountHandler) HandleDeleteAddress(c echo.Context) error {
	addresses, err := h.backend.DeleteAddress(c.Request().Context(), auth.GetToken(c), c.Param("id"))
	if err != nil {
		return backendError(err, "Failed to delete address")
	}
	return addressesJSON(c, addresses)
}

func (h *AccountHandler) HandleListNotifications(c echo.Context) error {
	notes, err := h.backend.ListNotifications(c.Request().Context(), auth.GetToken(c))
	if err != nil {
		return backendError(err, "Failed to load notifications")
	}
	if notes == nil {
		notes = []types.Notification{}
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *AccountHandler) HandleDeleteNotification(c echo.Context) error {
	if err := h.backend.DeleteNotification(c.Request().Context(), auth.GetToken(c), c.Param("id")); err != nil {
		return backendError(err, "Failed to delete notification")
	}
	return c.NoContent(http.StatusNoContent)
}
