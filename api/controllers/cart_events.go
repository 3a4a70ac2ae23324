package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

const (
	EventReady   = "ready"
	EventChanged = "changed"

	defaultHeartbeat = 25 * time.Second
)

// CartEvents streams the cart to the client as server-sent events. The first
// event carries the current state; every committed change sends another.
func CartEvents(carts CartSource, fee decimal.Decimal, heartbeat time.Duration, logg *logger.Logger) http.HandlerFunc {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rc := http.NewResponseController(w)
		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")

		changes := make(chan struct{}, 1)
		unsubscribe := store.Subscribe(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		w.WriteHeader(http.StatusOK)
		if err := writeEvent(w, EventReady, newCartView(store, fee)); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "cart.events.flush_unsupported", err)
			}
			return
		}
		if logg != nil {
			logg.Debug(r.Context(), "cart.events.open")
		}

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				if logg != nil {
					logg.Debug(r.Context(), "cart.events.closed")
				}
				return
			case <-changes:
				if err := writeEvent(w, EventChanged, newCartView(store, fee)); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
