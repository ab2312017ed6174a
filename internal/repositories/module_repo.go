package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modulehub/modulehub/internal/models"
)

type PostgresModuleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresModuleRepository(pool *pgxpool.Pool) *PostgresModuleRepository {
	return &PostgresModuleRepository{pool: pool}
}

func (r *PostgresModuleRepository) Create(ctx context.Context, module *models.Module) error {
	query := `INSERT INTO modules (number, name, description, owner_id)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		module.Number, module.Name, module.Description, module.OwnerID).
		Scan(&module.ID, &module.CreatedAt, &module.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

func (r *PostgresModuleRepository) GetByID(ctx context.Context, id int64) (*models.Module, error) {
	query := `SELECT id, number, name, description, owner_id, created_at, updated_at
              FROM modules WHERE id = $1`

	return r.scanModule(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresModuleRepository) List(ctx context.Context, limit, offset int) ([]*models.Module, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM modules`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count modules: %w", err)
	}

	query := `SELECT id, number, name, description, owner_id, created_at, updated_at
              FROM modules ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var modules []*models.Module
	for rows.Next() {
		var module models.Module
		if err := rows.Scan(&module.ID, &module.Number, &module.Name,
			&module.Description, &module.OwnerID, &module.CreatedAt, &module.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, &module)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, total, nil
}

// GetOwned scopes the lookup to the owner. A module owned by another
// account does not match, so the result is the same as for a missing id.
func (r *PostgresModuleRepository) GetOwned(ctx context.Context, id, ownerID int64) (*models.Module, error) {
	query := `SELECT id, number, name, description, owner_id, created_at, updated_at
              FROM modules WHERE id = $1 AND owner_id = $2`

	return r.scanModule(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *PostgresModuleRepository) UpdateOwned(ctx context.Context, module *models.Module) error {
	query := `UPDATE modules SET number = $1, name = $2, description = $3, updated_at = NOW()
              WHERE id = $4 AND owner_id = $5`

	result, err := r.pool.Exec(ctx, query,
		module.Number, module.Name, module.Description, module.ID, module.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresModuleRepository) DeleteOwned(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM modules WHERE id = $1 AND owner_id = $2`
	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresModuleRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM modules WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count modules: %w", err)
	}
	return count, nil
}

func (r *PostgresModuleRepository) scanModule(row pgx.Row) (*models.Module, error) {
	var module models.Module
	err := row.Scan(&module.ID, &module.Number, &module.Name,
		&module.Description, &module.OwnerID, &module.CreatedAt, &module.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return &module, nil
}

var _ ModuleRepository = (*PostgresModuleRepository)(nil)
