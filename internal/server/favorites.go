package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
)

const maxBodyBytes = 1 << 20

// FavoritesStore is the part of the favorites store the API needs.
type FavoritesStore interface {
	Ready() bool
	Contains(identity string) bool
	List() models.Collection
	Toggle(ctx context.Context, e models.Entity) (bool, error)
	Clear(ctx context.Context)
}

// ToggleResponse is returned by POST /favorites/toggle.
type ToggleResponse struct {
	Identity string `json:"url"`
	Favorite bool   `json:"favorite"`
	Count    int    `json:"count"`
}

// ContainsResponse is returned by GET /favorites/contains.
type ContainsResponse struct {
	Identity string `json:"url"`
	Favorite bool   `json:"favorite"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FavoritesHandler serves the favorites API.
type FavoritesHandler struct {
	store  FavoritesStore
	logger *log.Logger
	router *BasicRouter
}

// NewFavoritesHandler creates a handler over store.
func NewFavoritesHandler(store FavoritesStore, logger *log.Logger) *FavoritesHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	h := &FavoritesHandler{store: store, logger: logger, router: NewBasicRouter()}

	h.router.Handle(http.MethodGet, "/favorites", http.HandlerFunc(h.list))
	h.router.Handle(http.MethodDelete, "/favorites", http.HandlerFunc(h.clear))
	h.router.Handle(http.MethodPost, "/favorites/toggle", http.HandlerFunc(h.toggle))
	h.router.Handle(http.MethodGet, "/favorites/contains", http.HandlerFunc(h.contains))
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *FavoritesHandler) Routes() []string {
	return []string{"/favorites", "/favorites/toggle", "/favorites/contains"}
}

// ServeHTTP dispatches to the favorites endpoints.
func (h *FavoritesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		writeError(w, http.StatusServiceUnavailable, "favorites not initialized")
		return
	}
	h.router.ServeHTTP(w, r)
}

func (h *FavoritesHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *FavoritesHandler) toggle(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var entity models.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	favorite, err := h.store.Toggle(r.Context(), entity)
	if errors.Is(err, shared.ErrInvalidEntity) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	} else if err != nil {
		h.logger.Error("toggle failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "toggle failed")
		return
	}

	h.logger.Debug("toggled favorite", "url", entity.Identity, "favorite", favorite)
	writeJSON(w, http.StatusOK, ToggleResponse{
		Identity: entity.Identity,
		Favorite: favorite,
		Count:    len(h.store.List()),
	})
}

func (h *FavoritesHandler) contains(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("url")
	if identity == "" {
		writeError(w, http.StatusBadRequest, "missing url query parameter")
		return
	}
	writeJSON(w, http.StatusOK, ContainsResponse{Identity: identity, Favorite: h.store.Contains(identity)})
}

func (h *FavoritesHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Health answers GET /healthz.
func Health(store FavoritesStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{"status": "ok", "favorites_ready": store.Ready()}
		writeJSON(w, http.StatusOK, status)
	})
}

// NewAPI assembles the router, middleware and handlers for `holocron serve`.
func NewAPI(store FavoritesStore, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	router := NewBasicRouter()
	router.Use(RequestID(), Logging(logger), Recover(logger))
	router.Handle(http.MethodGet, "/healthz", Health(store))
	router.Handler(NewFavoritesHandler(store, logger))
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	data, _ := json.Marshal(ErrorResponse{Error: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
