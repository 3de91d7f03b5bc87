package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"guild-backend/internal/apperr"
	"guild-backend/internal/auth"
	"guild-backend/internal/service"
)

// SquadHandler serves the player-facing squad endpoints.
type SquadHandler struct {
	squads *service.SquadService
}

// NewSquadHandler creates a new SquadHandler instance.
func NewSquadHandler(squads *service.SquadService) *SquadHandler {
	return &SquadHandler{squads: squads}
}

type createSquadRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxMembers  int    `json:"maxMembers"`
}

type memberRequest struct {
	UserID uuid.UUID `json:"userId"`
}

type renameSquadRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/squads/create.
func (h *SquadHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	var req createSquadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	squad, err := h.squads.Create(r.Context(), claims.UserID, req.Name, req.Description, req.MaxMembers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, squad)
}

// Approved handles GET /api/squads/approved.
func (h *SquadHandler) Approved(w http.ResponseWriter, r *http.Request) {
	squads, err := h.squads.ApprovedList(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squads)
}

// Get handles GET /api/squads/{id}.
func (h *SquadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	squad, err := h.squads.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

// ByUser handles GET /api/squads/user/{userID}.
func (h *SquadHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}
	squad, err := h.squads.GetByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

// AddMember handles PUT /api/squads/{id}/add-member.
func (h *SquadHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.squads.AddMember(r.Context(), id, claims.UserID, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	squad, err := h.squads.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

// RemoveMember handles PUT /api/squads/{id}/remove-member.
func (h *SquadHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.squads.RemoveMember(r.Context(), id, claims.UserID, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// Leave handles PUT /api/squads/{id}/leave.
func (h *SquadHandler) Leave(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.squads.Leave(r.Context(), id, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left squad"})
}

// Rename handles PUT /api/squads/{id}/update-name.
func (h *SquadHandler) Rename(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req renameSquadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	squad, err := h.squads.Rename(r.Context(), id, claims.UserID, claims.Role, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

// Deactivate handles PUT /api/squads/{id}/deactivate.
func (h *SquadHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	squad, err := h.squads.Deactivate(r.Context(), id, claims.UserID, claims.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}
