package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/growgram/growgram-api/internal/domain/entity"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
)

// VerificationSessionRepo implements repository.VerificationSessionRepository.
type VerificationSessionRepo struct {
	db *gorm.DB
}

// NewVerificationSessionRepo creates a new session repository.
func NewVerificationSessionRepo(db *gorm.DB) *VerificationSessionRepo {
	return &VerificationSessionRepo{db: db}
}

// Create inserts a new session.
func (r *VerificationSessionRepo) Create(ctx context.Context, session *entity.AgeVerificationSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create verification session: %w", err)
	}
	return nil
}

// GetByID returns a session by its identifier.
func (r *VerificationSessionRepo) GetByID(ctx context.Context, id string) (*entity.AgeVerificationSession, error) {
	var session entity.AgeVerificationSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetLatestStartedByUserID returns the newest open session for the user.
func (r *VerificationSessionRepo) GetLatestStartedByUserID(ctx context.Context, userID uint) (*entity.AgeVerificationSession, error) {
	var session entity.AgeVerificationSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.SessionStatusStarted).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Complete transitions a session to a terminal status. The status guard in the
// WHERE clause makes the transition happen at most once; a duplicate callback
// simply affects zero rows.
func (r *VerificationSessionRepo) Complete(ctx context.Context, id string, status entity.SessionStatus, method, reference, rawPayload string, completedAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":       status,
		"completed_at": completedAt,
	}
	if method != "" {
		updates["method"] = method
	}
	if reference != "" {
		updates["reference"] = reference
	}
	if rawPayload != "" {
		updates["raw_payload"] = rawPayload
	}

	result := r.db.WithContext(ctx).
		Model(&entity.AgeVerificationSession{}).
		Where("id = ? AND status = ?", id, entity.SessionStatusStarted).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete verification session %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListByUserID returns all sessions for a user, newest first.
func (r *VerificationSessionRepo) ListByUserID(ctx context.Context, userID uint) ([]*entity.AgeVerificationSession, error) {
	var sessions []*entity.AgeVerificationSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list verification sessions: %w", err)
	}
	return sessions, nil
}

// ExpireStale marks open sessions created before the cutoff as EXPIRED.
func (r *VerificationSessionRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entity.AgeVerificationSession{}).
		Where("status = ? AND created_at < ?", entity.SessionStatusStarted, cutoff).
		Updates(map[string]interface{}{
			"status":       entity.SessionStatusExpired,
			"completed_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire stale verification sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
