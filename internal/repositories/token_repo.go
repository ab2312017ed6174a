package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshTokenPrefix = "refresh:"
const accountTokensPrefix = "account:%d:refresh"

// RedisRefreshTokenRepository holds the whitelist of live refresh token
// ids. A refresh token is only honored while its jti is present here, so
// logout and rotation are a single key delete.
type RedisRefreshTokenRepository struct {
	client *redis.Client
}

func NewRedisRefreshTokenRepository(client *redis.Client) *RedisRefreshTokenRepository {
	return &RedisRefreshTokenRepository{client: client}
}

func (r *RedisRefreshTokenRepository) Save(ctx context.Context, jti string, accountID int64, ttl time.Duration) error {
	key := refreshTokenPrefix + jti
	err := r.client.Set(ctx, key, strconv.FormatInt(accountID, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	// Secondary index so all tokens of an account can be revoked at once.
	accountKey := fmt.Sprintf(accountTokensPrefix, accountID)
	err = r.client.SAdd(ctx, accountKey, jti).Err()
	if err != nil {
		return fmt.Errorf("failed to index refresh token: %w", err)
	}
	return nil
}

func (r *RedisRefreshTokenRepository) Exists(ctx context.Context, jti string) (bool, error) {
	_, err := r.client.Get(ctx, refreshTokenPrefix+jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return true, nil
}

func (r *RedisRefreshTokenRepository) Delete(ctx context.Context, jti string) error {
	key := refreshTokenPrefix + jti

	accountIDStr, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get refresh token: %w", err)
	}

	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err == nil {
		accountKey := fmt.Sprintf(accountTokensPrefix, accountID)
		if err := r.client.SRem(ctx, accountKey, jti).Err(); err != nil {
			return fmt.Errorf("failed to unindex refresh token: %w", err)
		}
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *RedisRefreshTokenRepository) DeleteAllForAccount(ctx context.Context, accountID int64) error {
	accountKey := fmt.Sprintf(accountTokensPrefix, accountID)
	jtis, err := r.client.SMembers(ctx, accountKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list account refresh tokens: %w", err)
	}

	for _, jti := range jtis {
		if err := r.client.Del(ctx, refreshTokenPrefix+jti).Err(); err != nil {
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}
	}

	if err := r.client.Del(ctx, accountKey).Err(); err != nil {
		return fmt.Errorf("failed to delete account token index: %w", err)
	}
	return nil
}

var _ RefreshTokenRepository = (*RedisRefreshTokenRepository)(nil)
