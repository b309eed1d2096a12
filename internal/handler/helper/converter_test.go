package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

func TestAgeStatusFromUser_TierFlags(t *testing.T) {
	user := &entity.User{ID: 1}

	cases := []struct {
		tier               entity.AgeTier
		isUnder16          bool
		is16Plus           bool
		is18PlusUnverified bool
		is18PlusVerified   bool
	}{
		{entity.TierUnknown, false, false, false, false},
		{entity.TierUnder16, true, false, false, false},
		{entity.TierSixteen, false, true, false, false},
		{entity.TierEighteenUnverified, false, true, true, false},
		{entity.TierEighteenVerified, false, true, false, true},
	}
	for _, tc := range cases {
		status := AgeStatusFromUser(user, tc.tier)
		assert.Equal(t, tc.isUnder16, status.IsUnder16, "tier=%s", tc.tier)
		assert.Equal(t, tc.is16Plus, status.Is16Plus, "tier=%s", tc.tier)
		assert.Equal(t, tc.is18PlusUnverified, status.Is18PlusUnverified, "tier=%s", tc.tier)
		assert.Equal(t, tc.is18PlusVerified, status.Is18PlusVerified, "tier=%s", tc.tier)
		assert.Equal(t, tc.is18PlusVerified, status.CanAccessAdultAreas, "tier=%s", tc.tier)
	}
}

func TestAgeStatusFromUser_NeedsFlags(t *testing.T) {
	bare := &entity.User{ID: 2}
	status := AgeStatusFromUser(bare, entity.TierUnknown)
	assert.True(t, status.NeedsCompliance)
	assert.True(t, status.NeedsVerification)
	assert.Nil(t, status.Compliance)
	assert.Nil(t, status.Verification)

	verifiedAt := time.Now()
	full := &entity.User{
		ID: 3,
		Compliance: &entity.ComplianceAck{
			AgreedGeneralTerms: true,
			Over16Declared:     true,
			AcceptedAt:         verifiedAt,
		},
		AgeVerification: &entity.AgeVerificationState{
			Status:     entity.VerificationStatusVerified,
			Provider:   "veriff",
			VerifiedAt: &verifiedAt,
		},
	}
	status = AgeStatusFromUser(full, entity.TierEighteenVerified)
	assert.False(t, status.NeedsCompliance)
	assert.False(t, status.NeedsVerification)
	assert.NotNil(t, status.Compliance)
	assert.NotNil(t, status.Verification)
}
