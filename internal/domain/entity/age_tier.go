package entity

import "time"

// AgeTier classifies how much we trust a user's age. It is our internal
// classification, not the legal age itself.
//
//	TierUnknown            - we know nothing; only unrestricted content
//	TierUnder16            - declared or derived age below 16
//	TierSixteen            - 16+ confirmed by declaration
//	TierEighteenUnverified - user claims 18+ without a hard check
//	TierEighteenVerified   - 18+ confirmed by an external provider or operator
type AgeTier string

const (
	TierUnknown            AgeTier = "UNKNOWN"
	TierUnder16            AgeTier = "UNDER16"
	TierSixteen            AgeTier = "SIXTEEN"
	TierEighteenUnverified AgeTier = "EIGHTEEN_UNVERIFIED"
	TierEighteenVerified   AgeTier = "EIGHTEEN_VERIFIED"
)

var tierRank = map[AgeTier]int{
	TierUnknown:            0,
	TierUnder16:            1,
	TierSixteen:            2,
	TierEighteenUnverified: 3,
	TierEighteenVerified:   4,
}

// Rank returns the position of the tier in the privilege ordering.
// Unrecognized values rank as TierUnknown.
func (t AgeTier) Rank() int {
	return tierRank[t]
}

// IsValid reports whether the value is one of the defined tiers.
func (t AgeTier) IsValid() bool {
	_, ok := tierRank[t]
	return ok
}

// MaxTier returns the more privileged of the two tiers.
func MaxTier(a, b AgeTier) AgeTier {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AgeFromBirthDate computes full years between birthDate and now.
// Returns (0, false) for a nil birth date or an implausible result.
func AgeFromBirthDate(birthDate *time.Time, now time.Time) (int, bool) {
	if birthDate == nil {
		return 0, false
	}
	b := birthDate.UTC()
	n := now.UTC()

	age := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		age--
	}
	if age < 0 || age > 120 {
		return 0, false
	}
	return age, true
}

// ComputeTier derives the age tier from the persisted user attributes.
// It is the single place the age rules live; every other component must go
// through it instead of re-deriving tiers from raw fields.
//
// The function is total: it never fails and defaults to TierUnknown when the
// inputs carry no usable information.
//
// Precedence:
//  1. A VERIFIED external verification is authoritative, independent of any
//     (possibly stale) declaration or birth date.
//  2. Self-declared 18+ with accepted terms -> EIGHTEEN_UNVERIFIED.
//  3. Self-declared 16+ with accepted terms -> SIXTEEN.
//  4. Birth date below 16 -> UNDER16.
//  5. Otherwise UNKNOWN.
func ComputeTier(birthDate *time.Time, ack *ComplianceAck, verification *AgeVerificationState, now time.Time) AgeTier {
	if verification != nil && verification.Status == VerificationStatusVerified {
		return TierEighteenVerified
	}

	if birthDate == nil && ack == nil {
		return TierUnknown
	}

	// Declarations count only together with accepted general terms.
	if ack != nil && ack.AgreedGeneralTerms {
		if ack.Over18Declared {
			return TierEighteenUnverified
		}
		if ack.Over16Declared {
			return TierSixteen
		}
	}

	if age, ok := AgeFromBirthDate(birthDate, now); ok && age < 16 {
		return TierUnder16
	}

	return TierUnknown
}

// CanAccessAdultAreas reports whether the tier unlocks the closed 18+ area.
// Only a provider-verified adult qualifies; a self-declaration never does.
func CanAccessAdultAreas(tier AgeTier) bool {
	return tier == TierEighteenVerified
}
