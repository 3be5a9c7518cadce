// Package httpapi exposes the reminder operations over REST for external
// frontends: set/list/delete, an offline ask endpoint, and the ping probe
// the frontend polls for mode.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"talkassist/internal/intent"
	"talkassist/internal/reminder"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OnlineChecker reports internet reachability for /ping.
type OnlineChecker interface {
	Online(ctx context.Context) bool
}

type Server struct {
	r       *chi.Mux
	manager *reminder.Manager
	router  *intent.Router
	checker OnlineChecker
}

func NewServer(manager *reminder.Manager, router *intent.Router, checker OnlineChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	s := &Server{r: r, manager: manager, router: router, checker: checker}

	r.Get("/ping", s.ping)
	r.Post("/api/v1/reminders", s.setReminder)
	r.Get("/api/v1/reminders", s.listReminders)
	r.Delete("/api/v1/reminders/{number}", s.deleteReminder)
	r.Post("/api/v1/ask", s.ask)

	return r
}

type pingResp struct {
	Status   string `json:"status"`
	Backend  bool   `json:"backend"`
	Internet bool   `json:"internet"`
	Online   bool   `json:"online"`
	Mode     string `json:"mode"`
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	internet := s.checker.Online(r.Context())
	mode := "offline"
	if internet {
		mode = "online"
	}

	writeJSON(w, http.StatusOK, pingResp{
		Status:   "ok",
		Backend:  true,
		Internet: internet,
		Online:   internet,
		Mode:     mode,
	})
}

type setReminderReq struct {
	Text string `json:"text"`
}

type confirmationResp struct {
	Confirmation string `json:"confirmation"`
}

func (s *Server) setReminder(w http.ResponseWriter, r *http.Request) {
	var req setReminderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	confirmation, err := s.manager.Set(req.Text)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, confirmationResp{Confirmation: confirmation})
}

type listResp struct {
	Reminders []reminder.Entry `json:"reminders"`
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	entries := s.manager.List()
	if entries == nil {
		entries = []reminder.Entry{}
	}
	writeJSON(w, http.StatusOK, listResp{Reminders: entries})
}

type deleteResp struct {
	Success bool `json:"success"`
}

func (s *Server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "number must be an integer")
		return
	}

	if _, err := s.manager.Delete(number); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, deleteResp{Success: true})
}

type askReq struct {
	Message string `json:"message"`
}

type askResp struct {
	Response string `json:"response"`
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req askReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusOK, askResp{Response: ""})
		return
	}

	resp := s.router.Handle(message)
	writeJSON(w, http.StatusOK, askResp{Response: resp.Text})
}

// statusFor maps the reminder error taxonomy onto HTTP codes. Raw
// internals never reach the wire; the error strings are already the
// user-presentable messages.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reminder.ErrCouldNotUnderstandTime),
		errors.Is(err, reminder.ErrTimeInPast):
		return http.StatusBadRequest
	case errors.Is(err, reminder.ErrInvalidOrdinal),
		errors.Is(err, reminder.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Int("status", ww.Status()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("size", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	})
}

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResp{Error: msg})
}
