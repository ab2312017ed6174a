package repositories

import (
	"context"
	"time"

	"github.com/modulehub/modulehub/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int64) error
}

type ModuleRepository interface {
	Create(ctx context.Context, module *models.Module) error
	GetByID(ctx context.Context, id int64) (*models.Module, error)
	List(ctx context.Context, limit, offset int) ([]*models.Module, int64, error)
	// GetOwned, UpdateOwned and DeleteOwned restrict the lookup to rows
	// owned by ownerID. A row owned by someone else never matches, so the
	// caller cannot distinguish "missing" from "not yours".
	GetOwned(ctx context.Context, id, ownerID int64) (*models.Module, error)
	UpdateOwned(ctx context.Context, module *models.Module) error
	DeleteOwned(ctx context.Context, id, ownerID int64) error
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

type RefreshTokenRepository interface {
	Save(ctx context.Context, jti string, accountID int64, ttl time.Duration) error
	Exists(ctx context.Context, jti string) (bool, error)
	Delete(ctx context.Context, jti string) error
	DeleteAllForAccount(ctx context.Context, accountID int64) error
}
