package repository

import (
	"context"
	"time"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// VerificationSessionRepository stores age verification sessions.
// Sessions are an audit trail: there is deliberately no delete operation.
type VerificationSessionRepository interface {
	Create(ctx context.Context, session *entity.AgeVerificationSession) error
	GetByID(ctx context.Context, id string) (*entity.AgeVerificationSession, error)

	// GetLatestStartedByUserID returns the newest non-terminal session for the
	// user, or apperrors.ErrNotFound when none is open.
	GetLatestStartedByUserID(ctx context.Context, userID uint) (*entity.AgeVerificationSession, error)

	// Complete moves a session into a terminal status. The update is guarded
	// by status = STARTED so a session transitions at most once; completing an
	// already-terminal session reports (false, nil).
	Complete(ctx context.Context, id string, status entity.SessionStatus, method, reference, rawPayload string, completedAt time.Time) (bool, error)

	ListByUserID(ctx context.Context, userID uint) ([]*entity.AgeVerificationSession, error)

	// ExpireStale marks STARTED sessions created before the cutoff as EXPIRED
	// and returns how many were affected.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}
