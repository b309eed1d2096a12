package repository

import (
	"context"
	"time"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// TierCacheRepository is a short-lived cache of computed tiers used by the
// soft gate. The hard gate never reads it; compliance mutations invalidate it.
type TierCacheRepository interface {
	GetTier(ctx context.Context, userID uint) (entity.AgeTier, error)
	SetTier(ctx context.Context, userID uint, tier entity.AgeTier, ttl time.Duration) error
	Invalidate(ctx context.Context, userID uint) error
}
