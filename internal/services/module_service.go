package services

import (
	"context"

	"github.com/modulehub/modulehub/internal/models"
	"github.com/modulehub/modulehub/internal/repositories"
)

type ModuleService struct {
	moduleRepo repositories.ModuleRepository
}

func NewModuleService(moduleRepo repositories.ModuleRepository) *ModuleService {
	return &ModuleService{moduleRepo: moduleRepo}
}

type CreateModuleRequest struct {
	Number      int
	Name        string
	Description string
}

type UpdateModuleRequest struct {
	Number      *int
	Name        *string
	Description *string
}

// Create persists a module owned by the acting account. The owner comes
// from the verified identity only; nothing the client sends can change it.
func (s *ModuleService) Create(ctx context.Context, actorID int64, req CreateModuleRequest) (*models.Module, error) {
	module := &models.Module{
		Number:      req.Number,
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     actorID,
	}
	if err := s.moduleRepo.Create(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *ModuleService) Get(ctx context.Context, id int64) (*models.Module, error) {
	return s.moduleRepo.GetByID(ctx, id)
}

func (s *ModuleService) List(ctx context.Context, limit, offset int) ([]*models.Module, int64, error) {
	return s.moduleRepo.List(ctx, limit, offset)
}

// Update loads from the actor-owned subset, so a module owned by someone
// else fails with ErrNotFound exactly like a missing id.
func (s *ModuleService) Update(ctx context.Context, actorID, id int64, req UpdateModuleRequest) (*models.Module, error) {
	module, err := s.moduleRepo.GetOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		module.Number = *req.Number
	}
	if req.Name != nil {
		module.Name = *req.Name
	}
	if req.Description != nil {
		module.Description = *req.Description
	}

	if err := s.moduleRepo.UpdateOwned(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// Delete uses the same ownership-scoped lookup as Update.
func (s *ModuleService) Delete(ctx context.Context, actorID, id int64) error {
	return s.moduleRepo.DeleteOwned(ctx, id, actorID)
}
