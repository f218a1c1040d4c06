package lookup_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agenda/internal/agenda/lookup"
	"agenda/internal/logger"
	"agenda/internal/utils"

	"github.com/go-chi/chi/v5"
)

var errMissingParams = errors.New("column and value query parameters are required")

type Looker interface {
	Lookup(ctx context.Context, column, value string) (*lookup.Result, error)
}

// Handler serves agenda lookups over HTTP
type Handler struct {
	Engine Looker
	Logger *logger.Logger
	// Ping reports store health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewHandler(engine Looker, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{Engine: engine, Logger: log}
}

// RegisterRoutes registers the agenda routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/agenda", func(r chi.Router) {
		r.Use(h.logRequests)
		r.Get("/lookup", h.Lookup)
	})
}

// Lookup handles GET /api/agenda/lookup?column=&value=
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	value := r.URL.Query().Get("value")
	if column == "" || !r.URL.Query().Has("value") {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid lookup", errMissingParams))
		return
	}

	result, err := h.Engine.Lookup(r.Context(), column, value)
	if errors.Is(err, lookup.ErrUnknownColumn) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid lookup", err))
		return
	}
	if err != nil {
		h.Logger.Error("LOOKUP", fmt.Sprintf("Lookup %s=%q failed: %v", column, value, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Lookup failed", err))
		return
	}

	if !result.Found() {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(result.Message, nil))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d events found", len(result.Rows)), result))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("Store unavailable", err))
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.Logger.LogAPI(r.Method, r.URL.Path, fmt.Sprint(rec.status), time.Since(start).String())
	})
}
