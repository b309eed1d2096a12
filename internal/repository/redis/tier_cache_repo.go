package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/growgram/growgram-api/internal/domain/entity"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
)

// TierCacheRepo implements repository.TierCacheRepository on Redis.
//
// Only the soft gate reads this cache; the hard gate and every compliance
// mutation go to the primary store. Mutating services call Invalidate so a
// stale entry can outlive a tier change by at most the TTL.
type TierCacheRepo struct {
	client redis.UniversalClient
}

// NewTierCacheRepo creates a new tier cache repository.
func NewTierCacheRepo(client redis.UniversalClient) (*TierCacheRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for TierCacheRepo")
	}
	return &TierCacheRepo{client: client}, nil
}

func tierCacheKey(userID uint) string {
	return fmt.Sprintf("age-tier:%d", userID)
}

// GetTier returns the cached tier or apperrors.ErrNotFound on a miss.
func (r *TierCacheRepo) GetTier(ctx context.Context, userID uint) (entity.AgeTier, error) {
	val, err := r.client.Get(ctx, tierCacheKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", err
	}

	tier := entity.AgeTier(val)
	if !tier.IsValid() {
		// A corrupted entry must never grant access; treat it as a miss.
		return "", apperrors.ErrNotFound
	}
	return tier, nil
}

// SetTier caches the computed tier with a TTL.
func (r *TierCacheRepo) SetTier(ctx context.Context, userID uint, tier entity.AgeTier, ttl time.Duration) error {
	return r.client.Set(ctx, tierCacheKey(userID), string(tier), ttl).Err()
}

// Invalidate drops the cached tier for a user.
func (r *TierCacheRepo) Invalidate(ctx context.Context, userID uint) error {
	return r.client.Del(ctx, tierCacheKey(userID)).Err()
}
