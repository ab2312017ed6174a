package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/modulehub/modulehub/internal/models"
)

// In-memory implementations backing the test suites. They mirror the
// postgres semantics, including the owner-scoped module lookups and the
// cascade from account delete to owned modules.

type MemoryAccountRepository struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]models.Account
	modules  *MemoryModuleRepository
}

// NewMemoryAccountRepository builds an account store. If modules is not
// nil, deleting an account cascades to its modules.
func NewMemoryAccountRepository(modules *MemoryModuleRepository) *MemoryAccountRepository {
	return &MemoryAccountRepository{
		nextID:   1,
		accounts: make(map[int64]models.Account),
		modules:  modules,
	}
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return ErrDuplicateEmail
		}
	}

	account.ID = r.nextID
	r.nextID++
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = *account
	return nil
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Email == email {
			found := account
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAccountRepository) List(_ context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]*models.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		found := account
		accounts = append(accounts, &found)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r *MemoryAccountRepository) Update(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.accounts {
		if id != account.ID && existing.Email == account.Email {
			return ErrDuplicateEmail
		}
	}
	account.UpdatedAt = time.Now()
	r.accounts[account.ID] = *account
	return nil
}

func (r *MemoryAccountRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.accounts[id]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.accounts, id)
	r.mu.Unlock()

	if r.modules != nil {
		r.modules.deleteByOwner(id)
	}
	return nil
}

type MemoryModuleRepository struct {
	mu      sync.Mutex
	nextID  int64
	modules map[int64]models.Module
}

func NewMemoryModuleRepository() *MemoryModuleRepository {
	return &MemoryModuleRepository{
		nextID:  1,
		modules: make(map[int64]models.Module),
	}
}

func (r *MemoryModuleRepository) Create(_ context.Context, module *models.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	module.ID = r.nextID
	r.nextID++
	now := time.Now()
	module.CreatedAt = now
	module.UpdatedAt = now
	r.modules[module.ID] = *module
	return nil
}

func (r *MemoryModuleRepository) GetByID(_ context.Context, id int64) (*models.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, ok := r.modules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &module, nil
}

func (r *MemoryModuleRepository) List(_ context.Context, limit, offset int) ([]*models.Module, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]models.Module, 0, len(r.modules))
	for _, module := range r.modules {
		all = append(all, module)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	page := make([]*models.Module, 0, end-offset)
	for i := offset; i < end; i++ {
		found := all[i]
		page = append(page, &found)
	}
	return page, total, nil
}

func (r *MemoryModuleRepository) GetOwned(_ context.Context, id, ownerID int64) (*models.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, ok := r.modules[id]
	if !ok || module.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &module, nil
}

func (r *MemoryModuleRepository) UpdateOwned(_ context.Context, module *models.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.modules[module.ID]
	if !ok || existing.OwnerID != module.OwnerID {
		return ErrNotFound
	}
	module.CreatedAt = existing.CreatedAt
	module.UpdatedAt = time.Now()
	r.modules[module.ID] = *module
	return nil
}

func (r *MemoryModuleRepository) DeleteOwned(_ context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, ok := r.modules[id]
	if !ok || module.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.modules, id)
	return nil
}

func (r *MemoryModuleRepository) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, module := range r.modules {
		if module.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryModuleRepository) deleteByOwner(ownerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, module := range r.modules {
		if module.OwnerID == ownerID {
			delete(r.modules, id)
		}
	}
}

var (
	_ AccountRepository = (*MemoryAccountRepository)(nil)
	_ ModuleRepository  = (*MemoryModuleRepository)(nil)
)
