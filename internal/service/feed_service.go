package service

import (
	"context"
	"fmt"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/domain/repository"
)

// FeedService lists content with server-side age filtering applied after the
// query returns.
type FeedService struct {
	postRepo repository.PostRepository
}

// NewFeedService creates a new feed service.
func NewFeedService(postRepo repository.PostRepository) (*FeedService, error) {
	if postRepo == nil {
		return nil, fmt.Errorf("post repository is required")
	}
	return &FeedService{postRepo: postRepo}, nil
}

// ListFeed returns recent posts the viewer's tier may see. Guests pass
// TierUnknown and get only unrestricted content.
func (s *FeedService) ListFeed(ctx context.Context, viewerTier entity.AgeTier, limit, offset int) ([]entity.Post, error) {
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postRepo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return entity.FilterPostsForTier(posts, viewerTier), nil
}

// CreatePost stores a new post with normalized, fail-closed age metadata.
//
// requireVerified tells the caller-side gate policy: adult-only metadata on
// the regular publish path is rejected here as a defense in depth even though
// the route is already behind the hard gate.
func (s *FeedService) CreatePost(ctx context.Context, authorID uint, caption, mediaURL string, meta entity.ContentAgeMeta, authorTier entity.AgeTier) (*entity.Post, error) {
	normalized := meta.Normalize()

	if normalized.Audience == entity.AudienceEighteenPlus && !entity.CanAccessAdultAreas(authorTier) {
		return nil, fmt.Errorf("%w: publishing 18+ content requires a verified adult account", ErrAdultVerificationRequired)
	}

	post := &entity.Post{
		AuthorID: authorID,
		Caption:  caption,
		MediaURL: mediaURL,
		AgeMeta:  normalized,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
