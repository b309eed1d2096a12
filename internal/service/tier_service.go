package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/domain/repository"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
)

// TierInfo is the resolved age tier of a user, attached to the request
// context by the soft gate and returned by the status endpoint.
type TierInfo struct {
	UserID              uint           `json:"user_id"`
	Tier                entity.AgeTier `json:"tier"`
	StoredTier          entity.AgeTier `json:"stored_tier"`
	CanAccessAdultAreas bool           `json:"can_access_adult_18plus_areas"`
}

// TierService resolves a user's age tier from the stored record.
//
// The persisted age_tier column and the Redis entry are both caches over
// ComputeTier; Resolve recomputes from the raw fields and repairs a drifted
// column so a security decision is never made off stale denormalized data.
type TierService struct {
	userRepo  repository.UserRepository
	tierCache repository.TierCacheRepository
	cacheTTL  time.Duration
}

// NewTierService creates a new tier service. tierCache may be nil; the
// service then always resolves against the primary store.
func NewTierService(userRepo repository.UserRepository, tierCache repository.TierCacheRepository, cacheTTL time.Duration) (*TierService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &TierService{
		userRepo:  userRepo,
		tierCache: tierCache,
		cacheTTL:  cacheTTL,
	}, nil
}

// Resolve loads the user record and recomputes the tier from its raw fields.
// This is the authoritative path; the hard gate must use it.
func (s *TierService) Resolve(ctx context.Context, userID uint) (*TierInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tier := user.ComputeTier(now)

	// Repair a drifted cached column. The derivation is the source of truth,
	// so this may also correct an erroneously-high stored value.
	if user.AgeTier != tier {
		log.Printf("[TierService] cached tier drift for user %d: stored=%s computed=%s", userID, user.AgeTier, tier)
		updates := map[string]interface{}{"age_tier": tier}
		if err := s.userRepo.UpdateComplianceFields(ctx, userID, updates); err != nil {
			// Resolution still succeeds; the repair is retried on next resolve.
			log.Printf("[TierService] failed to repair cached tier for user %d: %v", userID, err)
		}
	}

	s.cacheTier(ctx, userID, tier)

	return &TierInfo{
		UserID:              userID,
		Tier:                tier,
		StoredTier:          user.AgeTier,
		CanAccessAdultAreas: entity.CanAccessAdultAreas(tier),
	}, nil
}

// ResolveCached serves the soft gate: a Redis hit short-circuits the primary
// store, a miss falls through to Resolve. Never use this for a hard gate.
func (s *TierService) ResolveCached(ctx context.Context, userID uint) (*TierInfo, error) {
	if s.tierCache != nil {
		tier, err := s.tierCache.GetTier(ctx, userID)
		if err == nil {
			return &TierInfo{
				UserID:              userID,
				Tier:                tier,
				StoredTier:          tier,
				CanAccessAdultAreas: entity.CanAccessAdultAreas(tier),
			}, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[TierService] tier cache read failed for user %d: %v", userID, err)
		}
	}
	return s.Resolve(ctx, userID)
}

func (s *TierService) cacheTier(ctx context.Context, userID uint, tier entity.AgeTier) {
	if s.tierCache == nil {
		return
	}
	if err := s.tierCache.SetTier(ctx, userID, tier, s.cacheTTL); err != nil {
		log.Printf("[TierService] tier cache write failed for user %d: %v", userID, err)
	}
}
