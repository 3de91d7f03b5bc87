package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"guild-backend/internal/apperr"
	"guild-backend/internal/auth"
	"guild-backend/internal/service"
)

// ScreenshotHandler serves screenshot submission, gallery and moderation
// endpoints.
type ScreenshotHandler struct {
	screenshots *service.ScreenshotService
}

// NewScreenshotHandler creates a new ScreenshotHandler instance.
func NewScreenshotHandler(screenshots *service.ScreenshotService) *ScreenshotHandler {
	return &ScreenshotHandler{screenshots: screenshots}
}

type submitScreenshotRequest struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
	Kills       int    `json:"kills"`
	Headshots   int    `json:"headshots"`
	DamageDealt int    `json:"damageDealt"`
	Survival    string `json:"survival"`
}

type reviewRequest struct {
	AdminComment string `json:"adminComment"`
}

// Submit handles POST /api/screenshots/submit.
func (h *ScreenshotHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	var req submitScreenshotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	shot, err := h.screenshots.Submit(r.Context(), claims.UserID, service.SubmitInput{
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Kills:       req.Kills,
		Headshots:   req.Headshots,
		DamageDealt: req.DamageDealt,
		Survival:    req.Survival,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shot)
}

// Approved handles GET /api/screenshots/approved.
func (h *ScreenshotHandler) Approved(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	shots, err := h.screenshots.Approved(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

// Pending handles GET /api/screenshots/pending.
func (h *ScreenshotHandler) Pending(w http.ResponseWriter, r *http.Request) {
	shots, err := h.screenshots.Pending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

// ByPlayer handles GET /api/screenshots/player/{userID}.
func (h *ScreenshotHandler) ByPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parseID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}
	shots, err := h.screenshots.ByPlayer(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

// Approve handles PUT /api/screenshots/approve/{id}.
func (h *ScreenshotHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, claims, comment, ok := h.reviewArgs(w, r)
	if !ok {
		return
	}
	shot, err := h.screenshots.Approve(r.Context(), id, claims.UserID, comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shot)
}

// Reject handles PUT /api/screenshots/reject/{id}.
func (h *ScreenshotHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, claims, comment, ok := h.reviewArgs(w, r)
	if !ok {
		return
	}
	shot, err := h.screenshots.Reject(r.Context(), id, claims.UserID, comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shot)
}

func (h *ScreenshotHandler) reviewArgs(w http.ResponseWriter, r *http.Request) (uuid.UUID, *auth.Claims, string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return uuid.Nil, nil, "", false
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return uuid.Nil, nil, "", false
	}
	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return uuid.Nil, nil, "", false
	}
	return id, claims, req.AdminComment, true
}
