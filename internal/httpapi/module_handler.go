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
	"github.com/modulehub/modulehub/internal/models"
	"github.com/modulehub/modulehub/internal/repositories"
	"github.com/modulehub/modulehub/internal/services"
)

type ModuleHandler struct {
	logger   *slog.Logger
	service  *services.ModuleService
	validate *validator.Validate
}

func NewModuleHandler(logger *slog.Logger, service *services.ModuleService, validate *validator.Validate) *ModuleHandler {
	return &ModuleHandler{logger: logger, service: service, validate: validate}
}

func (h *ModuleHandler) MountRoutes(r chi.Router) {
	r.Post("/modules/create/", h.create)
	r.Get("/modules/", h.list)
	r.Get("/modules/{id}/", h.retrieve)
	r.Put("/modules/update/{id}/", h.update)
	r.Delete("/modules/delete/{id}/", h.remove)
}

type createModuleRequest struct {
	Number      *int   `json:"number" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type updateModuleRequest struct {
	Number      *int    `json:"number"`
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// moduleResponse deliberately omits the owner.
type moduleResponse struct {
	ID          int64  `json:"id"`
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toModuleResponse(module *models.Module) moduleResponse {
	return moduleResponse{
		ID:          module.ID,
		Number:      module.Number,
		Name:        module.Name,
		Description: module.Description,
	}
}

func (h *ModuleHandler) create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindModule}, authz.ActionCreate) {
		return
	}

	var req createModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	module, err := h.service.Create(r.Context(), identity.AccountID, services.CreateModuleRequest{
		Number:      *req.Number,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("create module failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toModuleResponse(module))
}

func (h *ModuleHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindModule}, authz.ActionList) {
		return
	}

	page, pageSize := parsePageParams(r)
	modules, total, err := h.service.List(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("list modules failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]moduleResponse, 0, len(modules))
	for _, module := range modules {
		results = append(results, toModuleResponse(module))
	}

	writeJSON(w, http.StatusOK, buildPage(r, total, page, pageSize, results))
}

func (h *ModuleHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if !authorize(w, identity, authz.Resource{Kind: authz.KindModule}, authz.ActionRead) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	module, err := h.service.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("get module failed", slog.Any("error", err), slog.Int64("id", id))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toModuleResponse(module))
}

func (h *ModuleHandler) update(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if identity == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	var req updateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"non_field_errors": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err))
		return
	}

	// The lookup is scoped to modules owned by the actor, so a module
	// owned by someone else is reported as missing, not forbidden.
	module, err := h.service.Update(r.Context(), identity.AccountID, id, services.UpdateModuleRequest{
		Number:      req.Number,
		Name:        req.Name,
		Description: req.Description,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("update module failed", slog.Any("error", err), slog.Int64("id", id))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toModuleResponse(module))
}

func (h *ModuleHandler) remove(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if identity == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	err = h.service.Delete(r.Context(), identity.AccountID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("delete module failed", slog.Any("error", err), slog.Int64("id", id))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
