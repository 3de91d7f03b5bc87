package handler

import (
	"net/http"

	"guild-backend/internal/service"
)

// SettingsHandler serves the site-branding endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler instance.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type updateSettingsRequest struct {
	WebsiteName *string `json:"websiteName"`
	WebsiteLogo *string `json:"websiteLogo"`
	Description *string `json:"description"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	settings, err := h.settings.Update(r.Context(), req.WebsiteName, req.WebsiteLogo, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
