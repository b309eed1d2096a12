package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/growgram/growgram-api/internal/domain/entity"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
)

// PostRepo implements repository.PostRepository.
type PostRepo struct {
	db *gorm.DB
}

// NewPostRepo creates a new post repository.
func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db: db}
}

// Create inserts a new post.
func (r *PostRepo) Create(ctx context.Context, post *entity.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID returns a post by primary key.
func (r *PostRepo) GetByID(ctx context.Context, id uint) (*entity.Post, error) {
	var post entity.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListRecent returns posts newest first. Visibility filtering is not pushed
// into the query: the store has no composite index over the age columns, so
// the service filters in memory after the read.
func (r *PostRepo) ListRecent(ctx context.Context, limit, offset int) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
