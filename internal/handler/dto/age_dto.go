package dto

import "time"

// ComplianceAckDTO mirrors the stored acknowledgment for API responses.
type ComplianceAckDTO struct {
	Agree      bool      `json:"agree"`
	Over16     bool      `json:"over16"`
	Over18     bool      `json:"over18"`
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// VerificationStateDTO mirrors the user-level verification outcome.
type VerificationStateDTO struct {
	Status     string     `json:"status"`
	Provider   string     `json:"provider,omitempty"`
	Method     string     `json:"method,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// AgeStatusDTO is the full age status payload for the authenticated user.
// The boolean flags are precomputed server-side so clients do not reimplement
// tier comparison logic.
type AgeStatusDTO struct {
	UserID              uint   `json:"user_id"`
	Tier                string `json:"age_tier"`
	CanAccessAdultAreas bool   `json:"can_access_adult_18plus_areas"`

	IsUnder16          bool `json:"is_under16"`
	Is16Plus           bool `json:"is_16plus"`
	Is18PlusUnverified bool `json:"is_18plus_unverified"`
	Is18PlusVerified   bool `json:"is_18plus_verified"`

	NeedsCompliance   bool                  `json:"needs_compliance_ack"`
	NeedsVerification bool                  `json:"needs_adult_verification"`
	Compliance        *ComplianceAckDTO     `json:"compliance,omitempty"`
	Verification      *VerificationStateDTO `json:"verification,omitempty"`
}

// PostDTO is a feed item as rendered to a viewer.
type PostDTO struct {
	ID        uint      `json:"id"`
	AuthorID  uint      `json:"author_id"`
	Caption   string    `json:"caption"`
	MediaURL  string    `json:"media_url,omitempty"`
	Audience  string    `json:"audience"`
	MinAge    int       `json:"min_age,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedResponse is a page of visible posts.
type FeedResponse struct {
	Posts      []*PostDTO `json:"posts"`
	ViewerTier string     `json:"viewer_tier"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
