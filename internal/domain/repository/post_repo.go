package repository

import (
	"context"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// PostRepository stores feed content.
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id uint) (*entity.Post, error)

	// ListRecent returns posts ordered newest first. Age filtering happens in
	// the service layer after the query returns.
	ListRecent(ctx context.Context, limit, offset int) ([]entity.Post, error)
}
