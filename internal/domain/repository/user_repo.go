package repository

import (
	"context"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// UserRepository defines access to user records.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	// UpdateComplianceFields applies a partial update to the user's compliance
	// record as one atomic write. Callers pass column -> value pairs; tier,
	// ack and verification state must always be written in the same call so an
	// interrupted sequence can never leave them inconsistent.
	UpdateComplianceFields(ctx context.Context, userID uint, updates map[string]interface{}) error
}
