package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/growgram/growgram-api/internal/domain/entity"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
)

func TestResolve_RepairsDriftedStoredTier(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, err := NewTierService(userRepo, nil, time.Minute)
	require.NoError(t, err)

	verifiedAt := time.Now().Add(-time.Hour)
	// Stored column says UNKNOWN but the raw fields say verified adult.
	drifted := &entity.User{
		ID:      8,
		AgeTier: entity.TierUnknown,
		AgeVerification: &entity.AgeVerificationState{
			Status:     entity.VerificationStatusVerified,
			Provider:   "veriff",
			VerifiedAt: &verifiedAt,
		},
	}

	userRepo.On("GetByID", mock.Anything, uint(8)).Return(drifted, nil)
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(8), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["age_tier"] == entity.TierEighteenVerified
	})).Return(nil)

	info, err := svc.Resolve(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, entity.TierEighteenVerified, info.Tier)
	assert.True(t, info.CanAccessAdultAreas)

	userRepo.AssertExpectations(t)
}

func TestResolve_RepairFailureDoesNotFailResolution(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, err := NewTierService(userRepo, nil, time.Minute)
	require.NoError(t, err)

	drifted := &entity.User{
		ID:      8,
		AgeTier: entity.TierSixteen,
		Compliance: &entity.ComplianceAck{
			AgreedGeneralTerms: true,
			Over16Declared:     true,
			Over18Declared:     true,
			AcceptedAt:         time.Now(),
		},
	}

	userRepo.On("GetByID", mock.Anything, uint(8)).Return(drifted, nil)
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(8), mock.Anything).
		Return(fmt.Errorf("connection reset"))

	info, err := svc.Resolve(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, entity.TierEighteenUnverified, info.Tier)
	assert.False(t, info.CanAccessAdultAreas)
}

func TestResolveCached_ServesCacheHitWithoutPrimaryStore(t *testing.T) {
	userRepo := new(MockUserRepository)
	tierCache := new(MockTierCacheRepository)
	svc, err := NewTierService(userRepo, tierCache, time.Minute)
	require.NoError(t, err)

	tierCache.On("GetTier", mock.Anything, uint(3)).Return(entity.TierSixteen, nil)

	info, err := svc.ResolveCached(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, entity.TierSixteen, info.Tier)

	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestResolveCached_MissFallsThroughAndCaches(t *testing.T) {
	userRepo := new(MockUserRepository)
	tierCache := new(MockTierCacheRepository)
	svc, err := NewTierService(userRepo, tierCache, time.Minute)
	require.NoError(t, err)

	tierCache.On("GetTier", mock.Anything, uint(3)).
		Return(entity.TierUnknown, fmt.Errorf("%w: no cached tier", apperrors.ErrNotFound))
	userRepo.On("GetByID", mock.Anything, uint(3)).Return(&entity.User{ID: 3, AgeTier: entity.TierUnknown}, nil)
	tierCache.On("SetTier", mock.Anything, uint(3), entity.TierUnknown, time.Minute).Return(nil)

	info, err := svc.ResolveCached(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, entity.TierUnknown, info.Tier)

	tierCache.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
