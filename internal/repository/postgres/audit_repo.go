package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// AuditRepo implements repository.AuditRepository. Append-only: there are no
// update or delete operations on audit entries.
type AuditRepo struct {
	db *gorm.DB
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append writes one audit entry.
func (r *AuditRepo) Append(ctx context.Context, entry *entity.ComplianceAuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListByUserID returns a user's audit trail, oldest first.
func (r *AuditRepo) ListByUserID(ctx context.Context, userID uint) ([]*entity.ComplianceAuditEntry, error) {
	var entries []*entity.ComplianceAuditEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
