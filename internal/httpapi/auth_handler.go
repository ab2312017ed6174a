package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modulehub/modulehub/internal/services"
)

type AuthHandler struct {
	logger   *slog.Logger
	service  *services.AuthService
	validate *validator.Validate
}

func NewAuthHandler(logger *slog.Logger, service *services.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{logger: logger, service: service, validate: validate}
}

func (h *AuthHandler) MountRoutes(r chi.Router) {
	r.Post("/users/token/", h.obtain)
	r.Post("/users/token/refresh/", h.refresh)
	r.Post("/users/token/logout/", h.logout)
}

type tokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) obtain(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.Refresh)
	if errors.Is(err, services.ErrInvalidToken) {
		writeDetail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if err != nil {
		h.logger.Error("refresh failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	if err := h.service.Logout(r.Context(), req.Refresh); err != nil && !errors.Is(err, services.ErrInvalidToken) {
		h.logger.Error("logout failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
