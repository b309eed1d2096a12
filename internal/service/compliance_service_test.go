package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/domain/repository"
)

func newComplianceServiceForTest(t *testing.T, userRepo *MockUserRepository, auditRepo *MockAuditRepository, tierCache *MockTierCacheRepository) *ComplianceService {
	t.Helper()
	// Avoid wrapping a typed nil pointer in the interface: the service's
	// nil-cache guard compares against an untyped nil interface.
	var cache repository.TierCacheRepository
	if tierCache != nil {
		cache = tierCache
	}
	svc, err := NewComplianceService(userRepo, auditRepo, cache, "v1")
	require.NoError(t, err)
	return svc
}

func TestAcceptCompliance_RequiresAgreeAndOver16(t *testing.T) {
	userRepo := new(MockUserRepository)
	auditRepo := new(MockAuditRepository)
	svc := newComplianceServiceForTest(t, userRepo, auditRepo, nil)

	cases := []ComplianceAckInput{
		{Agree: false, Over16: true},
		{Agree: true, Over16: false},
		{Agree: false, Over16: false, Over18: true},
	}
	for _, in := range cases {
		_, err := svc.AcceptCompliance(context.Background(), 1, in)
		assert.ErrorIs(t, err, ErrInvalidComplianceInput)
	}

	userRepo.AssertNotCalled(t, "UpdateComplianceFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptCompliance_Over16GrantsSixteen(t *testing.T) {
	userRepo := new(MockUserRepository)
	auditRepo := new(MockAuditRepository)
	tierCache := new(MockTierCacheRepository)
	svc := newComplianceServiceForTest(t, userRepo, auditRepo, tierCache)

	userRepo.On("GetByID", mock.Anything, uint(7)).Return(&entity.User{ID: 7}, nil)
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(7), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["age_tier"] == entity.TierSixteen && u["compliance_agree"] == true && u["compliance_over18"] == false
	})).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.ComplianceAuditEntry) bool {
		return e.UserID == 7 && e.Kind == entity.AuditKindComplianceAck &&
			e.FromTier == entity.TierUnknown && e.ToTier == entity.TierSixteen
	})).Return(nil)
	tierCache.On("Invalidate", mock.Anything, uint(7)).Return(nil)

	result, err := svc.AcceptCompliance(context.Background(), 7, ComplianceAckInput{Agree: true, Over16: true})
	require.NoError(t, err)
	assert.Equal(t, entity.TierSixteen, result.Tier)
	assert.True(t, result.Compliance.AgreedGeneralTerms)

	userRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestAcceptCompliance_Over18GrantsEighteenUnverified(t *testing.T) {
	userRepo := new(MockUserRepository)
	auditRepo := new(MockAuditRepository)
	svc := newComplianceServiceForTest(t, userRepo, auditRepo, nil)

	userRepo.On("GetByID", mock.Anything, uint(3)).Return(&entity.User{ID: 3}, nil)
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(3), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["age_tier"] == entity.TierEighteenUnverified && u["compliance_over18"] == true
	})).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.ComplianceAuditEntry) bool {
		return e.ToTier == entity.TierEighteenUnverified
	})).Return(nil)

	result, err := svc.AcceptCompliance(context.Background(), 3, ComplianceAckInput{Agree: true, Over16: true, Over18: true})
	require.NoError(t, err)
	assert.Equal(t, entity.TierEighteenUnverified, result.Tier)
}

func TestAcceptCompliance_NeverDowngradesVerifiedUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	auditRepo := new(MockAuditRepository)
	svc := newComplianceServiceForTest(t, userRepo, auditRepo, nil)

	verifiedAt := time.Now().Add(-24 * time.Hour)
	verified := &entity.User{
		ID:      9,
		AgeTier: entity.TierEighteenVerified,
		AgeVerification: &entity.AgeVerificationState{
			Status:     entity.VerificationStatusVerified,
			Provider:   "veriff",
			VerifiedAt: &verifiedAt,
		},
	}

	userRepo.On("GetByID", mock.Anything, uint(9)).Return(verified, nil)
	// The ack is stored, but the tier stays at the verified maximum.
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(9), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["age_tier"] == entity.TierEighteenVerified
	})).Return(nil)

	result, err := svc.AcceptCompliance(context.Background(), 9, ComplianceAckInput{Agree: true, Over16: true})
	require.NoError(t, err)
	assert.Equal(t, entity.TierEighteenVerified, result.Tier)

	// No tier change, so no audit entry.
	auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAcceptCompliance_ResubmissionWritesNoSecondAuditEntry(t *testing.T) {
	userRepo := new(MockUserRepository)
	auditRepo := new(MockAuditRepository)
	svc := newComplianceServiceForTest(t, userRepo, auditRepo, nil)

	alreadyAcked := &entity.User{
		ID: 5,
		Compliance: &entity.ComplianceAck{
			AgreedGeneralTerms: true,
			Over16Declared:     true,
			Over18Declared:     true,
			Version:            "v1",
			AcceptedAt:         time.Now().Add(-time.Hour),
		},
	}

	userRepo.On("GetByID", mock.Anything, uint(5)).Return(alreadyAcked, nil)
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(5), mock.Anything).Return(nil)

	result, err := svc.AcceptCompliance(context.Background(), 5, ComplianceAckInput{Agree: true, Over16: true, Over18: true})
	require.NoError(t, err)
	assert.Equal(t, entity.TierEighteenUnverified, result.Tier)

	auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAcceptCompliance_DefaultsTermsVersion(t *testing.T) {
	userRepo := new(MockUserRepository)
	auditRepo := new(MockAuditRepository)
	svc := newComplianceServiceForTest(t, userRepo, auditRepo, nil)

	userRepo.On("GetByID", mock.Anything, uint(2)).Return(&entity.User{ID: 2}, nil)
	userRepo.On("UpdateComplianceFields", mock.Anything, uint(2), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["compliance_version"] == "v1"
	})).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.AcceptCompliance(context.Background(), 2, ComplianceAckInput{Agree: true, Over16: true})
	require.NoError(t, err)
	assert.Equal(t, "v1", result.Compliance.Version)
}
