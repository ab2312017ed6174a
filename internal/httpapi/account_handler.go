package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modulehub/modulehub/internal/authz"
	"github.com/modulehub/modulehub/internal/repositories"
	"github.com/modulehub/modulehub/internal/services"
)

type AccountHandler struct {
	logger   *slog.Logger
	service  *services.AccountService
	auth     *services.AuthService
	validate *validator.Validate
}

func NewAccountHandler(logger *slog.Logger, service *services.AccountService, auth *services.AuthService, validate *validator.Validate) *AccountHandler {
	return &AccountHandler{logger: logger, service: service, auth: auth, validate: validate}
}

func (h *AccountHandler) MountRoutes(r chi.Router) {
	r.Post("/users/user/", h.create)
	r.Get("/users/user/", h.list)
	r.Get("/users/user/{id}/", h.retrieve)
	r.Put("/users/user/{id}/", h.update)
	r.Patch("/users/user/{id}/", h.update)
	r.Delete("/users/user/{id}/", h.remove)
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type updateAccountRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// accountResponse never carries the password, in any form.
type accountResponse struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	ModuleCount int64  `json:"module_count"`
}

func toAccountResponse(info *services.AccountInfo) accountResponse {
	return accountResponse{
		Email:       info.Email,
		FirstName:   info.FirstName,
		LastName:    info.LastName,
		ModuleCount: info.ModuleCount,
	}
}

// create handles self-service registration; it is the only account
// endpoint open to everyone.
func (h *AccountHandler) create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindAccount}, authz.ActionCreate) {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	info, err := h.service.Register(r.Context(), services.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, services.ErrEmailExists) {
		writeFieldErrors(w, map[string]string{"email": "email already taken"})
		return
	}
	if err != nil {
		h.logger.Error("register account failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(info))
}

func (h *AccountHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindAccount}, authz.ActionList) {
		return
	}

	infos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list accounts failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]accountResponse, 0, len(infos))
	for _, info := range infos {
		results = append(results, toAccountResponse(info))
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *AccountHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindAccount}, authz.ActionRead) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	info, err := h.service.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("get account failed", slog.Any("error", err), slog.Int64("id", id))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(info))
}

func (h *AccountHandler) update(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindAccount}, authz.ActionUpdate) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	info, err := h.service.Update(r.Context(), id, services.UpdateAccountRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if errors.Is(err, services.ErrEmailExists) {
		writeFieldErrors(w, map[string]string{"email": "email already taken"})
		return
	}
	if err != nil {
		h.logger.Error("update account failed", slog.Any("error", err), slog.Int64("id", id))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(info))
}

func (h *AccountHandler) remove(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindAccount}, authz.ActionDelete) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	err = h.service.Delete(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("delete account failed", slog.Any("error", err), slog.Int64("id", id))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Outstanding refresh tokens of a removed account are useless;
	// revoke them so the whitelist does not accumulate orphans.
	if err := h.auth.LogoutAll(r.Context(), id); err != nil {
		h.logger.Warn("revoke refresh tokens failed", slog.Any("error", err), slog.Int64("id", id))
	}

	w.WriteHeader(http.StatusNoContent)
}
