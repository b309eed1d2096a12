package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/domain/repository"
)

// ComplianceAckInput is the user's consent declaration as submitted.
type ComplianceAckInput struct {
	Agree     bool
	Over16    bool
	Over18    bool
	Version   string
	Device    string
	IP        string
	UserAgent string
}

// ComplianceResult is returned after a successful acknowledgment.
type ComplianceResult struct {
	UserID     uint                  `json:"user_id"`
	Tier       entity.AgeTier        `json:"age_tier"`
	Compliance *entity.ComplianceAck `json:"compliance"`
}

// ComplianceService records consent acknowledgments. It is the only path by
// which an unverified user can self-declare adulthood.
type ComplianceService struct {
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	tierCache    repository.TierCacheRepository
	termsVersion string
}

// NewComplianceService creates a new compliance service. termsVersion is the
// current terms document version recorded when the client sends none.
func NewComplianceService(
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	tierCache repository.TierCacheRepository,
	termsVersion string,
) (*ComplianceService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if termsVersion == "" {
		termsVersion = "v1"
	}
	return &ComplianceService{
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		tierCache:    tierCache,
		termsVersion: termsVersion,
	}, nil
}

// AcceptCompliance persists a consent acknowledgment and upgrades the user's
// tier monotonically: the stored tier is max(existing, requested), so a
// verified adult re-submitting a 16+ acknowledgment stays verified.
//
// Repeated identical submissions are idempotent; an audit entry is appended
// only when the tier actually increased.
func (s *ComplianceService) AcceptCompliance(ctx context.Context, userID uint, in ComplianceAckInput) (*ComplianceResult, error) {
	if !in.Agree || !in.Over16 {
		return nil, fmt.Errorf("%w: agree and over16 are required", ErrInvalidComplianceInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// Recompute instead of trusting the cached column.
	existingTier := user.ComputeTier(now)

	requestedTier := entity.TierSixteen
	if in.Over18 {
		requestedTier = entity.TierEighteenUnverified
	}
	finalTier := entity.MaxTier(existingTier, requestedTier)

	version := in.Version
	if version == "" {
		version = s.termsVersion
	}

	ack := &entity.ComplianceAck{
		AgreedGeneralTerms: true,
		Over16Declared:     true,
		Over18Declared:     in.Over18,
		Version:            version,
		AcceptedAt:         now,
		Device:             in.Device,
	}

	// One atomic write covering the ack and the cached tier.
	updates := map[string]interface{}{
		"compliance_agree":       ack.AgreedGeneralTerms,
		"compliance_over16":      ack.Over16Declared,
		"compliance_over18":      ack.Over18Declared,
		"compliance_version":     ack.Version,
		"compliance_accepted_at": ack.AcceptedAt,
		"compliance_device":      ack.Device,
		"age_tier":               finalTier,
	}
	if err := s.userRepo.UpdateComplianceFields(ctx, userID, updates); err != nil {
		return nil, err
	}

	if finalTier.Rank() > existingTier.Rank() {
		entry := &entity.ComplianceAuditEntry{
			UserID:    userID,
			Kind:      entity.AuditKindComplianceAck,
			FromTier:  existingTier,
			ToTier:    finalTier,
			Version:   version,
			Device:    in.Device,
			IP:        in.IP,
			UserAgent: in.UserAgent,
		}
		if err := s.auditRepo.Append(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record compliance audit entry: %w", err)
		}
	}

	s.invalidateTierCache(ctx, userID)

	return &ComplianceResult{
		UserID:     userID,
		Tier:       finalTier,
		Compliance: ack,
	}, nil
}

func (s *ComplianceService) invalidateTierCache(ctx context.Context, userID uint) {
	if s.tierCache == nil {
		return
	}
	if err := s.tierCache.Invalidate(ctx, userID); err != nil {
		log.Printf("[ComplianceService] failed to invalidate tier cache for user %d: %v", userID, err)
	}
}
