package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/modulehub/modulehub/internal/models"
	"github.com/modulehub/modulehub/internal/repositories"
	"github.com/modulehub/modulehub/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type AuthService struct {
	accountRepo   repositories.AccountRepository
	tokenRepo     repositories.RefreshTokenRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type TokenPair struct {
	Access    string
	Refresh   string
	ExpiresAt time.Time
}

func NewAuthService(
	accountRepo repositories.AccountRepository,
	tokenRepo repositories.RefreshTokenRepository,
	jwtSecret string,
	accessExpiry time.Duration,
	refreshExpiry time.Duration,
) *AuthService {
	return &AuthService{
		accountRepo:   accountRepo,
		tokenRepo:     tokenRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Login validates credentials and issues an access/refresh pair.
// Unknown email, password mismatch and deactivated accounts are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, account.ID)
}

// Refresh rotates a refresh token: the presented token is verified
// against the whitelist, revoked, and a fresh pair is issued. Replaying
// a rotated token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	live, err := s.tokenRepo.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !live {
		return nil, ErrInvalidToken
	}

	accountID, err := claims.accountID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Flags may have changed since issuance, so the account must still
	// exist and be active.
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !account.IsActive {
		return nil, ErrInvalidToken
	}

	if err := s.tokenRepo.Delete(ctx, claims.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issuePair(ctx, account.ID)
}

// VerifyAccess resolves an access token to an Identity. Staff and
// superuser flags come from the account row, not the token, so demotion
// takes effect on the next request.
func (s *AuthService) VerifyAccess(ctx context.Context, tokenString string) (*models.Identity, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}

	accountID, err := claims.accountID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !account.IsActive {
		return nil, ErrInvalidToken
	}

	return &models.Identity{
		AccountID:   account.ID,
		IsStaff:     account.IsStaff,
		IsSuperuser: account.IsSuperuser,
	}, nil
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return err
	}
	if claims.TokenType != tokenTypeRefresh || claims.ID == "" {
		return ErrInvalidToken
	}

	err = s.tokenRepo.Delete(ctx, claims.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of an account.
func (s *AuthService) LogoutAll(ctx context.Context, accountID int64) error {
	if err := s.tokenRepo.DeleteAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

func (c *tokenClaims) accountID() (int64, error) {
	var id int64
	_, err := fmt.Sscanf(c.Subject, "%d", &id)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (s *AuthService) issuePair(ctx context.Context, accountID int64) (*TokenPair, error) {
	now := time.Now()
	accessExpiresAt := now.Add(s.accessExpiry)

	access, err := s.signToken(accountID, tokenTypeAccess, "", now, accessExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	jti := uuid.New().String()
	refreshExpiresAt := now.Add(s.refreshExpiry)
	refresh, err := s.signToken(accountID, tokenTypeRefresh, jti, now, refreshExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.tokenRepo.Save(ctx, jti, accountID, s.refreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &TokenPair{
		Access:    access,
		Refresh:   refresh,
		ExpiresAt: accessExpiresAt,
	}, nil
}

func (s *AuthService) signToken(accountID int64, tokenType, jti string, issuedAt, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", accountID),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(tokenString string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
