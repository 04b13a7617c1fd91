package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/reminder"
)

const maxBodyBytes = 64 << 10

// Error bodies shared with existing clients of the store.
const (
	msgIncomplete = "Data incomplete"
	msgNotFound   = "Cannot find the reminders"
)

// Server exposes a Store over HTTP.
type Server struct {
	store *Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewServer wraps store.
func NewServer(store *Store, log zerolog.Logger) *Server {
	return &Server{store: store, now: time.Now, log: log}
}

// Router returns the store's routes.
//
//	GET    /reminders
//	POST   /reminders
//	PUT    /reminders/{id}/complete
//	DELETE /reminders/{id}
//	GET    /upcoming
//	GET    /notes
//	POST   /notes
//	DELETE /notes/{index}
//	GET    /history
//	GET    /healthz
//	GET    /metrics
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Route("/reminders", func(r chi.Router) {
		r.Get("/", s.listReminders)
		r.Post("/", s.createReminder)
		r.Put("/{id}/complete", s.completeReminder)
		r.Delete("/{id}", s.deleteReminder)
	})
	r.Get("/upcoming", s.upcoming)

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", s.listNotes)
		r.Post("/", s.createNote)
		r.Delete("/{index}", s.deleteNote)
	})
	r.Get("/history", s.listHistory)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.store.ListReminders(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) createReminder(w http.ResponseWriter, r *http.Request) {
	var f reminder.Fields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, msgIncomplete)
		return
	}

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		msg := err.Error()
		if errors.Is(err, reminder.ErrIncomplete) {
			msg = msgIncomplete
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.AddReminder(r.Context(), f)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Reminder added successfully",
		"reminder": created,
	})
}

func (s *Server) completeReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.respond(w, s.store.CompleteReminder(r.Context(), id), "Reminder marked as completed")
}

func (s *Server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.respond(w, s.store.DeleteReminder(r.Context(), id), "Reminder deleted successfully")
}

func (s *Server) upcoming(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.store.ListReminders(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	upcoming := alert.Upcoming(reminders, s.now())
	if upcoming == nil {
		upcoming = []reminder.Reminder{}
	}
	writeJSON(w, http.StatusOK, upcoming)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.ListNotes(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil ||
		strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, msgIncomplete)
		return
	}

	note, err := s.store.AddNote(r.Context(), strings.TrimSpace(body.Content))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Note added successfully",
		"note":    note,
	})
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Cannot find the note")
		return
	}
	err = s.store.DeleteNote(r.Context(), index)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cannot find the note")
		return
	}
	s.respond(w, err, "Note deleted successfully")
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.ListHistory(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) respond(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("store request failed")
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
