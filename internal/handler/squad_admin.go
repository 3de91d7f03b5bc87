package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"guild-backend/internal/apperr"
	"guild-backend/internal/auth"
	"guild-backend/internal/service"
)

// SquadAdminHandler serves the admin-only squad moderation endpoints.
type SquadAdminHandler struct {
	squads *service.SquadService
}

// NewSquadAdminHandler creates a new SquadAdminHandler instance.
func NewSquadAdminHandler(squads *service.SquadService) *SquadAdminHandler {
	return &SquadAdminHandler{squads: squads}
}

type moderationRequest struct {
	AdminComment string `json:"adminComment"`
}

type kickRequest struct {
	UserID uuid.UUID `json:"userId"`
	Reason string    `json:"reason"`
}

type deleteSquadRequest struct {
	Reason string `json:"reason"`
}

// Pending handles GET /api/squads/pending/admin/list.
func (h *SquadAdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	squads, err := h.squads.PendingList(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squads)
}

// Approve handles PUT /api/squads/{id}/approve.
func (h *SquadAdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, claims, comment, ok := h.moderationArgs(w, r)
	if !ok {
		return
	}
	squad, err := h.squads.Approve(r.Context(), id, claims.UserID, comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

// Reject handles PUT /api/squads/{id}/reject.
func (h *SquadAdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, claims, comment, ok := h.moderationArgs(w, r)
	if !ok {
		return
	}
	squad, err := h.squads.Reject(r.Context(), id, claims.UserID, comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

// List handles GET /api/squads/admin/list with optional status and search
// query filters.
func (h *SquadAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summaries, err := h.squads.AdminList(r.Context(), q.Get("status"), q.Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Analytics handles GET /api/squads/admin/{id}/analytics.
func (h *SquadAdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	members, err := h.squads.Analytics(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// Stats handles GET /api/squads/admin/stats.
func (h *SquadAdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.squads.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Kick handles PUT /api/squads/admin/{id}/kick.
func (h *SquadAdminHandler) Kick(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req kickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.squads.KickMember(r.Context(), id, req.UserID, claims.UserID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// AddMember handles PUT /api/squads/admin/{id}/add-member.
func (h *SquadAdminHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.squads.AddMemberAsAdmin(r.Context(), id, req.UserID); err != nil {
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

// Delete handles DELETE /api/squads/admin/{id}.
func (h *SquadAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req deleteSquadRequest
	if r.Body != nil && r.ContentLength > 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	if err := h.squads.DeleteSquad(r.Context(), id, claims.UserID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "squad deleted"})
}

func (h *SquadAdminHandler) moderationArgs(w http.ResponseWriter, r *http.Request) (uuid.UUID, *auth.Claims, string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return uuid.Nil, nil, "", false
	}
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return uuid.Nil, nil, "", false
	}
	var req moderationRequest
	if r.Body != nil && r.ContentLength > 0 {
		if !decodeBody(w, r, &req) {
			return uuid.Nil, nil, "", false
		}
	}
	return id, claims, req.AdminComment, true
}
