package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/logging"
)

const maxPayloadBytes = 64 << 10

// NewRouter exposes the handler and hub over HTTP.
//
//	POST /push                      any body up to 64 KiB, answers 202 {"id": ...}
//	POST /notifications/{id}/click  answers {"action": "focused"|"opened"}
//	GET  /clients/ws                client window websocket
//	GET  /healthz
//	GET  /metrics
func NewRouter(h *Handler, hub *Hub, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Post("/push", func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload too large"})
			return
		case err != nil:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read payload"})
			return
		}
		id := h.HandlePush(context.WithoutCancel(r.Context()), raw)
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
	})

	r.Post("/notifications/{id}/click", func(w http.ResponseWriter, r *http.Request) {
		action, err := h.HandleClick(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, ErrUnknownNotification):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
		case err != nil:
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"action": string(action)})
		}
	})

	r.Get("/clients/ws", hub.ServeWS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"clients": hub.Count(),
			"pending": h.Pending(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
