package helper

import (
	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/handler/dto"
)

// AgeStatusFromUser builds the status payload from the user record and the
// freshly computed tier. The computed tier wins over the cached column.
func AgeStatusFromUser(user *entity.User, tier entity.AgeTier) *dto.AgeStatusDTO {
	status := &dto.AgeStatusDTO{
		UserID:              user.ID,
		Tier:                string(tier),
		CanAccessAdultAreas: entity.CanAccessAdultAreas(tier),
		IsUnder16:           tier == entity.TierUnder16,
		Is16Plus:            tier.Rank() >= entity.TierSixteen.Rank(),
		Is18PlusUnverified:  tier == entity.TierEighteenUnverified,
		Is18PlusVerified:    tier == entity.TierEighteenVerified,
	}

	if user.Compliance != nil && user.Compliance.AgreedGeneralTerms {
		status.Compliance = &dto.ComplianceAckDTO{
			Agree:      user.Compliance.AgreedGeneralTerms,
			Over16:     user.Compliance.Over16Declared,
			Over18:     user.Compliance.Over18Declared,
			Version:    user.Compliance.Version,
			AcceptedAt: user.Compliance.AcceptedAt,
		}
	} else {
		status.NeedsCompliance = true
	}

	if user.AgeVerification != nil && user.AgeVerification.Status != "" &&
		user.AgeVerification.Status != entity.VerificationStatusNone {
		status.Verification = &dto.VerificationStateDTO{
			Status:     string(user.AgeVerification.Status),
			Provider:   user.AgeVerification.Provider,
			Method:     user.AgeVerification.Method,
			VerifiedAt: user.AgeVerification.VerifiedAt,
		}
	}

	status.NeedsVerification = !status.CanAccessAdultAreas
	return status
}

// PostsToDTOs converts already-filtered posts for the feed response.
func PostsToDTOs(posts []entity.Post) []*dto.PostDTO {
	out := make([]*dto.PostDTO, len(posts))
	for i := range posts {
		p := &posts[i]
		out[i] = &dto.PostDTO{
			ID:        p.ID,
			AuthorID:  p.AuthorID,
			Caption:   p.Caption,
			MediaURL:  p.MediaURL,
			Audience:  string(p.AgeMeta.Audience),
			MinAge:    p.AgeMeta.MinAge,
			Tags:      p.AgeMeta.Tags,
			CreatedAt: p.CreatedAt,
		}
	}
	return out
}
