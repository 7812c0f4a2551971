// Package window implements the HTTP handlers for the match service.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	POST /windows                          → open a window with a candidate
//	GET  /windows/pending                  → windows waiting on the caller
//	GET  /windows/waiting                  → windows waiting on the other party
//	GET  /windows/confirmed                → mutually confirmed windows
//	GET  /windows/{id}                     → fetch one window
//	POST /windows/{id}/confirm             → record the caller's confirmation
//	POST /windows/{id}/decline             → close the window
//	POST /windows/{id}/extend              → request a deadline extension
//	POST /windows/{id}/extension-response  → accept or refuse the extension
package window

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ─── Response types ───────────────────────────────────────────────────────────

// WindowResponse is the JSON shape returned to the Gateway / clients.
type WindowResponse struct {
	ID             string    `json:"id"`
	UserA          int64     `json:"userA"`
	UserB          int64     `json:"userB"`
	Status         string    `json:"status"`
	UserAConfirmed bool      `json:"userAConfirmed"`
	UserBConfirmed bool      `json:"userBConfirmed"`
	ExtensionCount int       `json:"extensionCount"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func toResponse(w *Window) WindowResponse {
	return WindowResponse{
		ID:             w.ID.String(),
		UserA:          w.UserA,
		UserB:          w.UserB,
		Status:         string(w.Status),
		UserAConfirmed: w.UserAConfirmed,
		UserBConfirmed: w.UserBConfirmed,
		ExtensionCount: w.ExtensionCount,
		CreatedAt:      w.CreatedAt,
		ExpiresAt:      w.ExpiresAt,
	}
}

func toResponseList(windows []Window) []WindowResponse {
	out := make([]WindowResponse, 0, len(windows))
	for i := range windows {
		out = append(out, toResponse(&windows[i]))
	}
	return out
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler exposes the Manager over HTTP.
type Handler struct {
	manager *Manager
}

// NewHandler returns a configured Handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes mounts all match-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/windows", h.handleWindows)
	mux.HandleFunc("/windows/", h.handleWindowAction)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleWindows handles POST /windows
func (h *Handler) handleWindows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.createWindow(w, r)
}

// handleWindowAction handles GET /windows/{id|view} and
// POST /windows/{id}/{action}
func (h *Handler) handleWindowAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodGet && len(parts) == 2:
		switch parts[1] {
		case "pending":
			h.listWindows(w, r, h.manager.ListPending)
		case "waiting":
			h.listWindows(w, r, h.manager.ListWaiting)
		case "confirmed":
			h.listWindows(w, r, h.manager.ListConfirmed)
		default:
			h.getWindow(w, r, parts[1])
		}
	case r.Method == http.MethodPost && len(parts) == 3:
		windowID := parts[1]
		switch parts[2] {
		case "confirm":
			h.confirm(w, r, windowID)
		case "decline":
			h.decline(w, r, windowID)
		case "extend":
			h.requestExtension(w, r, windowID)
		case "extension-response":
			h.respondToExtension(w, r, windowID)
		default:
			jsonError(w, fmt.Sprintf("unknown action %q", parts[2]), http.StatusNotFound)
		}
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) createWindow(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body struct {
		CandidateID int64 `json:"candidateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CandidateID == 0 {
		jsonError(w, "body must contain candidateId", http.StatusBadRequest)
		return
	}

	win, err := h.manager.Create(r.Context(), userID, body.CandidateID)
	if err != nil {
		// A duplicate carries the pair's active window so the client
		// can pick up where it left off.
		if errors.Is(err, ErrDuplicateWindow) && win != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(toResponse(win))
			return
		}
		writeManagerError(w, err)
		return
	}
	jsonOK(w, toResponse(win))
}

func (h *Handler) getWindow(w http.ResponseWriter, r *http.Request, rawID string) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	windowID, err := uuid.Parse(rawID)
	if err != nil {
		jsonError(w, "invalid window id", http.StatusBadRequest)
		return
	}

	win, err := h.manager.Get(r.Context(), windowID, userID)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	jsonOK(w, toResponse(win))
}

func (h *Handler) listWindows(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64) ([]Window, error)) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	windows, err := list(r.Context(), userID)
	if err != nil {
		log.Printf("[match] list windows error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, toResponseList(windows))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, rawID string) {
	h.mutate(w, r, rawID, h.manager.Confirm)
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request, rawID string) {
	h.mutate(w, r, rawID, h.manager.Decline)
}

func (h *Handler) requestExtension(w http.ResponseWriter, r *http.Request, rawID string) {
	h.mutate(w, r, rawID, h.manager.RequestExtension)
}

func (h *Handler) respondToExtension(w http.ResponseWriter, r *http.Request, rawID string) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	windowID, err := uuid.Parse(rawID)
	if err != nil {
		jsonError(w, "invalid window id", http.StatusBadRequest)
		return
	}

	var body struct {
		Accept *bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Accept == nil {
		jsonError(w, "body must contain accept", http.StatusBadRequest)
		return
	}

	win, err := h.manager.RespondToExtension(r.Context(), windowID, userID, *body.Accept)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	jsonOK(w, toResponse(win))
}

// mutate is the shared shape of confirm, decline and extend.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, rawID string, op func(ctx context.Context, id uuid.UUID, userID int64) (*Window, error)) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	windowID, err := uuid.Parse(rawID)
	if err != nil {
		jsonError(w, "invalid window id", http.StatusBadRequest)
		return
	}

	win, err := op(r.Context(), windowID, userID)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	jsonOK(w, toResponse(win))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// callerID parses the x-user-id header, writing the error response on
// failure.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("x-user-id")
	if raw == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		jsonError(w, "invalid x-user-id header", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// writeManagerError maps Manager errors to HTTP status codes.
func writeManagerError(w http.ResponseWriter, err error) {
	var (
		vErr       *ValidationError
		invalid    *InvalidTransitionError
		ineligible *IneligibleError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		jsonError(w, "match window not found", http.StatusNotFound)
	case errors.Is(err, ErrUnauthorizedParty):
		jsonError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrDuplicateWindow):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &invalid):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &ineligible):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &vErr):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("[match] internal error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
