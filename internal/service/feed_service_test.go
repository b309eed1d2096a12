package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

func feedFixture() []entity.Post {
	return []entity.Post{
		{ID: 1, Caption: "open to all", AgeMeta: entity.ContentAgeMeta{Audience: entity.AudienceAll}},
		{ID: 2, Caption: "sixteen plus", AgeMeta: entity.ContentAgeMeta{Audience: entity.AudienceSixteenPlus, MinAge: 16}},
		{ID: 3, Caption: "adults only", AgeMeta: entity.ContentAgeMeta{Audience: entity.AudienceEighteenPlus, AdultOnly: true, MinAge: 18}},
	}
}

func TestListFeed_FiltersByViewerTier(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, err := NewFeedService(postRepo)
	require.NoError(t, err)

	postRepo.On("ListRecent", mock.Anything, 20, 0).Return(feedFixture(), nil)

	cases := []struct {
		tier    entity.AgeTier
		wantIDs []uint
	}{
		{entity.TierUnknown, []uint{1}},
		{entity.TierUnder16, []uint{1}},
		{entity.TierSixteen, []uint{1, 2}},
		// Self-declared adults do not see verified-only content.
		{entity.TierEighteenUnverified, []uint{1, 2}},
		{entity.TierEighteenVerified, []uint{1, 2, 3}},
	}
	for _, tc := range cases {
		posts, err := svc.ListFeed(context.Background(), tc.tier, 20, 0)
		require.NoError(t, err, "tier=%s", tc.tier)

		ids := make([]uint, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		assert.Equal(t, tc.wantIDs, ids, "tier=%s", tc.tier)
	}
}

func TestListFeed_ClampsLimit(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, err := NewFeedService(postRepo)
	require.NoError(t, err)

	postRepo.On("ListRecent", mock.Anything, 20, 0).Return([]entity.Post{}, nil).Once()
	_, err = svc.ListFeed(context.Background(), entity.TierUnknown, 0, -5)
	require.NoError(t, err)

	postRepo.On("ListRecent", mock.Anything, 100, 0).Return([]entity.Post{}, nil).Once()
	_, err = svc.ListFeed(context.Background(), entity.TierUnknown, 5000, 0)
	require.NoError(t, err)

	postRepo.AssertExpectations(t)
}

func TestCreatePost_NormalizesConflictingMetadata(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, err := NewFeedService(postRepo)
	require.NoError(t, err)

	postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.Post) bool {
		// adultOnly wins: the claimed ALL audience is overridden fail-closed.
		return p.AgeMeta.Audience == entity.AudienceEighteenPlus && p.AgeMeta.MinAge == 18
	})).Return(nil)

	post, err := svc.CreatePost(context.Background(), 1, "conflicting", "",
		entity.ContentAgeMeta{AdultOnly: true, Audience: entity.AudienceAll},
		entity.TierEighteenVerified)
	require.NoError(t, err)
	assert.True(t, post.AgeMeta.AdultOnly)

	postRepo.AssertExpectations(t)
}

func TestCreatePost_AdultContentRequiresVerifiedAuthor(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, err := NewFeedService(postRepo)
	require.NoError(t, err)

	for _, tier := range []entity.AgeTier{
		entity.TierUnknown,
		entity.TierSixteen,
		entity.TierEighteenUnverified,
	} {
		_, err := svc.CreatePost(context.Background(), 1, "nope", "",
			entity.ContentAgeMeta{AdultOnly: true}, tier)
		assert.ErrorIs(t, err, ErrAdultVerificationRequired, "tier=%s", tier)
	}

	postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
