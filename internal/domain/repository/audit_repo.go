package repository

import (
	"context"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// AuditRepository is the append-only legal record of compliance transitions.
// Entries are written once and never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.ComplianceAuditEntry) error
	ListByUserID(ctx context.Context, userID uint) ([]*entity.ComplianceAuditEntry, error)
}
