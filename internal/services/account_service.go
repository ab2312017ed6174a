package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/modulehub/modulehub/internal/models"
	"github.com/modulehub/modulehub/internal/repositories"
	"github.com/modulehub/modulehub/internal/utils"
)

var ErrEmailExists = errors.New("email already exists")

type AccountService struct {
	accountRepo repositories.AccountRepository
	moduleRepo  repositories.ModuleRepository
}

func NewAccountService(accountRepo repositories.AccountRepository, moduleRepo repositories.ModuleRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo, moduleRepo: moduleRepo}
}

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UpdateAccountRequest struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// AccountInfo is the outward account representation. ModuleCount is
// derived from the module store at read time, never cached on the row.
type AccountInfo struct {
	ID          int64
	Email       string
	FirstName   string
	LastName    string
	ModuleCount int64
}

// Register creates an account with a hashed password. Registration is
// self-service; new accounts are active, non-staff members.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*AccountInfo, error) {
	existing, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}

	err = s.accountRepo.Create(ctx, account)
	if errors.Is(err, repositories.ErrDuplicateEmail) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &AccountInfo{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*AccountInfo, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toInfo(ctx, account)
}

func (s *AccountService) List(ctx context.Context) ([]*AccountInfo, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*AccountInfo, 0, len(accounts))
	for _, account := range accounts {
		info, err := s.toInfo(ctx, account)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Update applies the provided subset of fields. A password change is
// re-hashed; everything else is copied as-is.
func (s *AccountService) Update(ctx context.Context, id int64, req UpdateAccountRequest) (*AccountInfo, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		account.Email = *req.Email
	}
	if req.FirstName != nil {
		account.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		account.LastName = *req.LastName
	}
	if req.Password != nil {
		hashedPassword, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = hashedPassword
	}

	err = s.accountRepo.Update(ctx, account)
	if errors.Is(err, repositories.ErrDuplicateEmail) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}

	return s.toInfo(ctx, account)
}

// Delete removes the account. Owned modules are removed with it by the
// store's cascade.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return s.accountRepo.Delete(ctx, id)
}

func (s *AccountService) toInfo(ctx context.Context, account *models.Account) (*AccountInfo, error) {
	count, err := s.moduleRepo.CountByOwner(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count modules: %w", err)
	}
	return &AccountInfo{
		ID:          account.ID,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		ModuleCount: count,
	}, nil
}
