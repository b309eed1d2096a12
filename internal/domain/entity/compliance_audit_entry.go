package entity

import "time"

// Audit entry kinds.
const (
	AuditKindComplianceAck = "compliance_ack"
	AuditKindVerification  = "age_verification"
	AuditKindAdminOverride = "admin_override"
)

// ComplianceAuditEntry is an append-only legal record of a tier change.
// Entries are written exactly once per legal-access-class change and are
// never mutated afterwards.
type ComplianceAuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Kind      string    `gorm:"size:30;not null" json:"kind"`
	FromTier  AgeTier   `gorm:"size:30;not null" json:"from_tier"`
	ToTier    AgeTier   `gorm:"size:30;not null" json:"to_tier"`
	Provider  string    `gorm:"size:50" json:"provider,omitempty"`
	Method    string    `gorm:"size:50" json:"method,omitempty"`
	Reference string    `gorm:"size:100" json:"reference,omitempty"`
	Version   string    `gorm:"size:20" json:"version,omitempty"`
	Device    string    `gorm:"size:100" json:"device,omitempty"`
	IP        string    `gorm:"size:50" json:"ip,omitempty"`
	UserAgent string    `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the GORM table name.
func (ComplianceAuditEntry) TableName() string {
	return "compliance_audit_entries"
}
