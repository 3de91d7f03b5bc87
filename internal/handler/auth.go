package handler

import (
	"net/http"

	"guild-backend/internal/apperr"
	"guild-backend/internal/auth"
	"guild-backend/internal/model"
	"guild-backend/internal/service"
)

// AuthHandler serves registration, login and profile endpoints.
type AuthHandler struct {
	identity *service.IdentityService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	GameID   string `json:"gameId"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	GameID   string `json:"gameId"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Wins     int    `json:"wins"`
	Matches  int    `json:"matches"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := h.identity.Register(r.Context(), req.Username, req.Email, req.Password, req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Message: "registration successful", Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: "login successful", Token: token, User: user})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	user, err := h.identity.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.identity.UpdateProfile(r.Context(), claims.UserID,
		req.Username, req.GameID, req.Kills, req.Deaths, req.Wins, req.Matches)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUsers handles GET /api/auth/users.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.identity.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
