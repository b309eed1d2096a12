package entity

import "time"

// SessionStatus is the lifecycle state of a verification session.
// STARTED is the only non-terminal state; a session moves to exactly one of
// VERIFIED, FAILED or EXPIRED and never transitions again.
type SessionStatus string

const (
	SessionStatusStarted  SessionStatus = "STARTED"
	SessionStatusVerified SessionStatus = "VERIFIED"
	SessionStatusFailed   SessionStatus = "FAILED"
	SessionStatusExpired  SessionStatus = "EXPIRED"
)

// AgeVerificationSession tracks one attempt to prove age via an external
// provider. Sessions are never deleted; they double as the audit trail of
// verification attempts, including failed and superseded ones.
type AgeVerificationSession struct {
	ID          string        `gorm:"primaryKey;size:64" json:"session_id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	Provider    string        `gorm:"size:50;not null" json:"provider"`
	Status      SessionStatus `gorm:"size:20;not null;index" json:"status"`
	RedirectURL string        `gorm:"size:500" json:"redirect_url,omitempty"`
	Method      string        `gorm:"size:50" json:"method,omitempty"`
	Reference   string        `gorm:"size:100" json:"reference,omitempty"`
	RawPayload  string        `gorm:"type:text" json:"-"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// TableName sets the GORM table name.
func (AgeVerificationSession) TableName() string {
	return "age_verification_sessions"
}

// IsTerminal reports whether the session reached a final state.
func (s *AgeVerificationSession) IsTerminal() bool {
	return s.Status != SessionStatusStarted
}
