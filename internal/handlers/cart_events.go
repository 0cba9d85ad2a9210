package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/events"
	"github.com/loganlanou/storefront/internal/localstore"
	"github.com/loganlanou/storefront/internal/session"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 25 * time.Second
)

type CartEventsHandler struct {
	bus   *events.Bus
	carts *cart.Registry
}

func NewCartEventsHandler(bus *events.Bus, carts *cart.Registry) *CartEventsHandler {
	return &CartEventsHandler{bus: bus, carts: carts}
}

// HandleStream pushes cart changes made by the session's other tabs as
// server-sent events. A "storage" event carries the new cart JSON; a
// "cartUpdated" event carries the current items after a clear.
func (h *CartEventsHandler) HandleStream(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := session.ID(c)
	stream := h.bus.Stream(ctx, sessionID, eventBuffer, events.TopicStorage, events.TopicCartUpdated)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-stream:
			if !ok {
				return nil
			}
			data, send := h.payload(c, ev)
			if !send {
				continue
			}
			if _, err := fmt.Fprintf(res, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Topic, data); err != nil {
				return nil
			}
			res.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func (h *CartEventsHandler) payload(c echo.Context, ev events.Event) (string, bool) {
	switch ev.Topic {
	case events.TopicStorage:
		if ev.Key != localstore.KeyCart || ev.Value == "" {
			return "", false
		}
		return ev.Value, true
	case events.TopicCartUpdated:
		items := h.carts.Get(c.Request().Context(), ownerFor(c)).Items()
		if items == nil {
			items = []cart.LineItem{}
		}
		raw, err := json.Marshal(items)
		if err != nil {
			slog.Error("failed to encode cart event", "error", err)
			return "", false
		}
		return string(raw), true
	}
	return "", false
}
