package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/growgram/growgram-api/internal/domain/entity"
)

// ============================================================================
// Shared repository mocks for service tests
// ============================================================================

// MockUserRepository implements repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateComplianceFields(ctx context.Context, userID uint, updates map[string]interface{}) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

// MockVerificationSessionRepository implements repository.VerificationSessionRepository
type MockVerificationSessionRepository struct {
	mock.Mock
}

func (m *MockVerificationSessionRepository) Create(ctx context.Context, session *entity.AgeVerificationSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockVerificationSessionRepository) GetByID(ctx context.Context, id string) (*entity.AgeVerificationSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AgeVerificationSession), args.Error(1)
}

func (m *MockVerificationSessionRepository) GetLatestStartedByUserID(ctx context.Context, userID uint) (*entity.AgeVerificationSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AgeVerificationSession), args.Error(1)
}

func (m *MockVerificationSessionRepository) Complete(ctx context.Context, id string, status entity.SessionStatus, method, reference, rawPayload string, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, method, reference, rawPayload, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationSessionRepository) ListByUserID(ctx context.Context, userID uint) ([]*entity.AgeVerificationSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AgeVerificationSession), args.Error(1)
}

func (m *MockVerificationSessionRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository implements repository.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *entity.ComplianceAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByUserID(ctx context.Context, userID uint) ([]*entity.ComplianceAuditEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ComplianceAuditEntry), args.Error(1)
}

// MockTierCacheRepository implements repository.TierCacheRepository
type MockTierCacheRepository struct {
	mock.Mock
}

func (m *MockTierCacheRepository) GetTier(ctx context.Context, userID uint) (entity.AgeTier, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entity.AgeTier), args.Error(1)
}

func (m *MockTierCacheRepository) SetTier(ctx context.Context, userID uint, tier entity.AgeTier, ttl time.Duration) error {
	args := m.Called(ctx, userID, tier, ttl)
	return args.Error(0)
}

func (m *MockTierCacheRepository) Invalidate(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPostRepository implements repository.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) ListRecent(ctx context.Context, limit, offset int) ([]entity.Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Post), args.Error(1)
}

// MockVerificationProvider implements VerificationProvider
type MockVerificationProvider struct {
	mock.Mock
}

func (m *MockVerificationProvider) CreateSession(ctx context.Context, userID uint, redirectURL string) (*ProviderSession, error) {
	args := m.Called(ctx, userID, redirectURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderSession), args.Error(1)
}

func (m *MockVerificationProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
