// Package api exposes the trip store as a JSON API for a browser front-end.
// All handlers are methods on Server; routes are registered in NewRouter.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/planner"
	"github.com/Tiliavir/lumina/internal/tripstore"
)

// DefaultMaxBodyBytes caps request bodies when RouterOptions leaves it zero.
const DefaultMaxBodyBytes = 1 << 20

// Server holds the handler dependencies.
type Server struct {
	store    *tripstore.Store
	searcher *planner.Searcher
	monitor  *connectivity.Monitor
	log      *zap.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(store *tripstore.Store, searcher *planner.Searcher, monitor *connectivity.Monitor, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: store, searcher: searcher, monitor: monitor, log: log}
}

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter wires every route of s onto a chi router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(NewRequestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(NewCORSHandler(opts.AllowedOrigins))
	r.Use(NewMaxBodySizeHandler(opts.MaxBodyBytes))

	r.Get("/healthz", s.Healthz)
	r.Get("/state", s.GetState)
	r.Put("/view", s.PutView)
	r.Put("/location", s.PutLocation)
	r.Put("/hotel", s.PutHotel)
	r.Post("/search", s.PostSearch)
	r.Put("/connectivity", s.PutConnectivity)
	r.Get("/convert", s.GetConvert)

	r.Route("/activities", func(r chi.Router) {
		r.Post("/", s.CreateActivity)
		r.Put("/{id}", s.UpdateActivity)
		r.Delete("/{id}", s.DeleteActivity)
		r.Post("/{id}/edit", s.BeginEdit)
	})
	r.Route("/draft", func(r chi.Router) {
		r.Get("/", s.GetDraft)
		r.Put("/", s.PutDraft)
		r.Post("/", s.SaveDraft)
		r.Delete("/", s.CancelDraft)
	})
	r.Route("/lists/{list}", func(r chi.Router) {
		r.Post("/", s.AddListItem)
		r.Post("/{id}/toggle", s.ToggleListItem)
		r.Delete("/{id}", s.DeleteListItem)
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", s.CreateExpense)
		r.Delete("/{id}", s.DeleteExpense)
	})
	return r
}

// ErrorDetail is the body of every non-2xx response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("unable to write response stream", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func (s *Server) notFound(w http.ResponseWriter, what string) {
	s.writeError(w, http.StatusNotFound, "not_found", what+" not found")
}

// rejected answers input the store refused (empty required field, zero amount).
func (s *Server) rejected(w http.ResponseWriter, message string) {
	s.writeError(w, http.StatusUnprocessableEntity, "rejected", message)
}

// internal logs err and answers 500 without leaking the cause.
func (s *Server) internal(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

// decode reads a JSON body into v, answering 400/413 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
	case errors.Is(err, io.EOF):
		s.writeError(w, http.StatusBadRequest, "bad_request", "request body is required")
	default:
		s.log.Warn("failed to decode json", zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
	}
	return false
}
