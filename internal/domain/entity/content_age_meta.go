package entity

import "strings"

// Audience is the coarse target group of a content item.
type Audience string

const (
	AudienceAll          Audience = "ALL"
	AudienceSixteenPlus  Audience = "SIXTEEN_PLUS"
	AudienceEighteenPlus Audience = "EIGHTEEN_PLUS"
)

// ContentAgeMeta is the age metadata attached to a filterable content item.
//
// The fields can arrive in any combination from clients or legacy rows;
// Normalize resolves conflicts fail-closed: when in doubt the item is treated
// as more restricted, never less.
type ContentAgeMeta struct {
	MinAge    int      `gorm:"column:min_age" json:"min_age,omitempty"`        // 0, 16 or 18
	AdultOnly bool     `gorm:"column:adult_only" json:"adult_only,omitempty"`  // true -> 18+ verified only
	Audience  Audience `gorm:"column:audience;size:20" json:"audience,omitempty"`
	Tags      string   `gorm:"column:tags;size:500" json:"tags,omitempty"` // comma-separated
}

// Normalize returns the canonical form of the metadata.
//
// Rules:
//   - AdultOnly forces Audience to EIGHTEEN_PLUS regardless of the literal
//     audience field (fail closed on conflicting metadata).
//   - MinAge >= 18 maps to EIGHTEEN_PLUS, 16..17 to at least SIXTEEN_PLUS.
//   - An unset or unrecognized audience becomes ALL only when nothing else
//     restricts the item.
func (m ContentAgeMeta) Normalize() ContentAgeMeta {
	out := ContentAgeMeta{Tags: normalizeTags(m.Tags)}

	switch {
	case m.MinAge >= 18:
		out.MinAge = 18
	case m.MinAge >= 16:
		out.MinAge = 16
	}

	switch m.Audience {
	case AudienceEighteenPlus:
		out.Audience = AudienceEighteenPlus
		out.MinAge = 18
	case AudienceSixteenPlus:
		out.Audience = AudienceSixteenPlus
		if out.MinAge == 0 {
			out.MinAge = 16
		}
	default:
		out.Audience = AudienceAll
	}

	if out.MinAge >= 18 {
		out.Audience = AudienceEighteenPlus
	} else if out.MinAge >= 16 && out.Audience == AudienceAll {
		out.Audience = AudienceSixteenPlus
	}

	// adultOnly wins over everything else.
	if m.AdultOnly {
		out.AdultOnly = true
		out.Audience = AudienceEighteenPlus
		out.MinAge = 18
	}

	return out
}

// VisibleTo decides whether a viewer with the given tier may see this item.
//
// Adult content requires a *verified* adult: a self-declared
// EIGHTEEN_UNVERIFIED viewer is treated like SIXTEEN here, even though the
// declaration matters elsewhere (e.g. posting permission checks).
func (m ContentAgeMeta) VisibleTo(tier AgeTier) bool {
	n := m.Normalize()

	switch n.Audience {
	case AudienceEighteenPlus:
		return tier == TierEighteenVerified
	case AudienceSixteenPlus:
		return tier.Rank() >= TierSixteen.Rank()
	default:
		return true
	}
}

func normalizeTags(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, ",")
	clean := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			clean = append(clean, strings.ToLower(t))
		}
	}
	return strings.Join(clean, ",")
}
