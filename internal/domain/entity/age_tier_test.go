package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tierTestNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func birthDateForAge(age int) *time.Time {
	d := tierTestNow.AddDate(-age, 0, -1)
	return &d
}

func acceptedAck(over16, over18 bool) *ComplianceAck {
	return &ComplianceAck{
		AgreedGeneralTerms: true,
		Over16Declared:     over16,
		Over18Declared:     over18,
		Version:            "v1",
		AcceptedAt:         tierTestNow,
	}
}

func verifiedState() *AgeVerificationState {
	verifiedAt := tierTestNow
	return &AgeVerificationState{
		Status:     VerificationStatusVerified,
		Provider:   "KJM_PROVIDER",
		Method:     "id_check",
		VerifiedAt: &verifiedAt,
	}
}

func TestComputeTier_Rules(t *testing.T) {
	tests := []struct {
		name         string
		birthDate    *time.Time
		ack          *ComplianceAck
		verification *AgeVerificationState
		want         AgeTier
	}{
		{name: "no data at all", want: TierUnknown},
		{name: "verified wins over everything", birthDate: birthDateForAge(14), ack: acceptedAck(true, false), verification: verifiedState(), want: TierEighteenVerified},
		{name: "verified without any declaration", verification: verifiedState(), want: TierEighteenVerified},
		{name: "over18 declaration", ack: acceptedAck(true, true), want: TierEighteenUnverified},
		{name: "over16 declaration only", ack: acceptedAck(true, false), want: TierSixteen},
		{name: "declaration without agreed terms", ack: &ComplianceAck{Over18Declared: true}, want: TierUnknown},
		{name: "birth date below 16", birthDate: birthDateForAge(14), want: TierUnder16},
		{name: "birth date 17 without declaration", birthDate: birthDateForAge(17), want: TierUnknown},
		{name: "failed verification falls through to declaration", ack: acceptedAck(true, true), verification: &AgeVerificationState{Status: VerificationStatusFailed}, want: TierEighteenUnverified},
		{name: "pending verification does not upgrade", ack: acceptedAck(true, false), verification: &AgeVerificationState{Status: VerificationStatusPending}, want: TierSixteen},
		{name: "implausible birth date ignored", birthDate: birthDateForAge(150), want: TierUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTier(tt.birthDate, tt.ack, tt.verification, tierTestNow)
			assert.Equal(t, tt.want, got)

			// Determinism: the same inputs always give the same tier.
			assert.Equal(t, got, ComputeTier(tt.birthDate, tt.ack, tt.verification, tierTestNow))
		})
	}
}

func TestComputeTier_TotalOverPartialInputs(t *testing.T) {
	// Every combination of missing pieces must yield a defined tier.
	birthDates := []*time.Time{nil, birthDateForAge(12), birthDateForAge(17), birthDateForAge(30)}
	acks := []*ComplianceAck{nil, {}, acceptedAck(false, false), acceptedAck(true, false), acceptedAck(true, true)}
	verifications := []*AgeVerificationState{nil, {}, {Status: VerificationStatusPending}, {Status: VerificationStatusFailed}, verifiedState()}

	for _, bd := range birthDates {
		for _, ack := range acks {
			for _, v := range verifications {
				got := ComputeTier(bd, ack, v, tierTestNow)
				assert.True(t, got.IsValid(), "ComputeTier returned undefined tier %q", got)
			}
		}
	}
}

func TestTierOrdering(t *testing.T) {
	ordered := []AgeTier{TierUnknown, TierUnder16, TierSixteen, TierEighteenUnverified, TierEighteenVerified}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank())
	}

	assert.Equal(t, TierEighteenVerified, MaxTier(TierSixteen, TierEighteenVerified))
	assert.Equal(t, TierEighteenVerified, MaxTier(TierEighteenVerified, TierSixteen))
	assert.Equal(t, TierSixteen, MaxTier(TierSixteen, TierUnder16))
}

func TestCanAccessAdultAreas(t *testing.T) {
	assert.True(t, CanAccessAdultAreas(TierEighteenVerified))

	// A self-declared adult does not unlock the closed 18+ area.
	assert.False(t, CanAccessAdultAreas(TierEighteenUnverified))
	assert.False(t, CanAccessAdultAreas(TierSixteen))
	assert.False(t, CanAccessAdultAreas(TierUnder16))
	assert.False(t, CanAccessAdultAreas(TierUnknown))
}

func TestAgeFromBirthDate(t *testing.T) {
	age, ok := AgeFromBirthDate(birthDateForAge(18), tierTestNow)
	require.True(t, ok)
	assert.Equal(t, 18, age)

	// Birthday later this year: not 18 yet.
	notYet := time.Date(tierTestNow.Year()-18, tierTestNow.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	age, ok = AgeFromBirthDate(&notYet, tierTestNow)
	require.True(t, ok)
	assert.Equal(t, 17, age)

	_, ok = AgeFromBirthDate(nil, tierTestNow)
	assert.False(t, ok)

	future := tierTestNow.AddDate(1, 0, 0)
	_, ok = AgeFromBirthDate(&future, tierTestNow)
	assert.False(t, ok)
}

func TestUser_ComputeTier_ZeroValuedEmbeds(t *testing.T) {
	// GORM hydrates embedded structs even when the row never had an ack.
	u := &User{
		Compliance:      &ComplianceAck{},
		AgeVerification: &AgeVerificationState{},
	}
	assert.Equal(t, TierUnknown, u.ComputeTier(tierTestNow))

	u.AgeVerification.Status = VerificationStatusVerified
	assert.Equal(t, TierEighteenVerified, u.ComputeTier(tierTestNow))
}
