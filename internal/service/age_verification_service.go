package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/domain/repository"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
)

// StartSessionResult is returned from StartSession.
type StartSessionResult struct {
	SessionID   string `json:"session_id"`
	Provider    string `json:"provider"`
	RedirectURL string `json:"redirect_url"`
}

// ProviderWebhookInput is the normalized shape of an inbound provider
// callback. The handler maps provider-specific field names onto it; the raw
// status string is normalized here, at the service boundary.
type ProviderWebhookInput struct {
	UserID     uint
	SessionID  string
	Provider   string
	Method     string
	Reference  string
	Status     string
	RawPayload string
}

// ProviderWebhookResult reports the normalized outcome back to the provider.
type ProviderWebhookResult struct {
	UserID uint                `json:"user_id"`
	Status VerificationOutcome `json:"status"`
}

// AdminVerificationInput is the operator override payload.
type AdminVerificationInput struct {
	UserID    uint
	Provider  string
	Method    string
	Reference string
}

// AgeVerificationService orchestrates the three-party verification flow:
// user, our server and the external provider. Sessions move
// STARTED -> VERIFIED | FAILED | EXPIRED exactly once; the user-level effect
// is keyed off userID + terminal status so duplicated or reordered webhook
// deliveries collapse into no-ops.
type AgeVerificationService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.VerificationSessionRepository
	auditRepo    repository.AuditRepository
	tierCache    repository.TierCacheRepository
	provider     VerificationProvider
	emailService EmailService
	frontendURL  string
	startTimeout time.Duration
	sessionTTL   time.Duration
}

// NewAgeVerificationService creates a new verification service.
func NewAgeVerificationService(
	userRepo repository.UserRepository,
	sessionRepo repository.VerificationSessionRepository,
	auditRepo repository.AuditRepository,
	tierCache repository.TierCacheRepository,
	provider VerificationProvider,
	emailService EmailService,
	frontendURL string,
	startTimeout time.Duration,
	sessionTTL time.Duration,
) (*AgeVerificationService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("verification session repository is required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("verification provider is required")
	}
	if emailService == nil {
		emailService = &NoopEmailService{}
	}
	if startTimeout <= 0 {
		startTimeout = 10 * time.Second
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AgeVerificationService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tierCache:    tierCache,
		provider:     provider,
		emailService: emailService,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		startTimeout: startTimeout,
		sessionTTL:   sessionTTL,
	}, nil
}

// StartSession opens a new verification session for the user. Each call
// creates a fresh session; older pending sessions are superseded, not
// cancelled, and the webhook handler tolerates completions for non-latest
// sessions.
//
// A provider timeout is a non-fatal pending outcome: the session stays
// STARTED with a fallback redirect and resolves via a later webhook or the
// expiry sweep.
func (s *AgeVerificationService) StartSession(ctx context.Context, userID uint, redirectURL string) (*StartSessionResult, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	reference := ""

	providerCtx, cancel := context.WithTimeout(ctx, s.startTimeout)
	defer cancel()

	providerSession, err := s.provider.CreateSession(providerCtx, userID, redirectURL)
	if err != nil {
		log.Printf("[AgeVerificationService] provider session for user %d not confirmed, continuing pending: %v", userID, err)
		providerSession = &ProviderSession{RedirectURL: s.fallbackRedirectURL()}
	}
	if providerSession.RedirectURL == "" {
		providerSession.RedirectURL = s.fallbackRedirectURL()
	}
	if providerSession.SessionID != "" {
		reference = providerSession.SessionID
	}

	session := &entity.AgeVerificationSession{
		ID:          sessionID,
		UserID:      userID,
		Provider:    s.provider.Name(),
		Status:      entity.SessionStatusStarted,
		RedirectURL: providerSession.RedirectURL,
		Reference:   reference,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &StartSessionResult{
		SessionID:   sessionID,
		Provider:    session.Provider,
		RedirectURL: session.RedirectURL,
	}, nil
}

// CompleteFromProvider handles an inbound provider callback.
//
// verified: marks the user 18+ verified, one audit entry, idempotent on
// duplicates. failed: recorded on the session only; an earlier successful
// verification of the user stands. pending: the session stays open.
func (s *AgeVerificationService) CompleteFromProvider(ctx context.Context, in ProviderWebhookInput) (*ProviderWebhookResult, error) {
	if in.UserID == 0 || strings.TrimSpace(in.Status) == "" {
		return nil, fmt.Errorf("%w: userId and status are required", ErrMalformedWebhookPayload)
	}

	outcome, err := NormalizeProviderStatus(in.Status)
	if err != nil {
		return nil, err
	}

	provider := in.Provider
	if provider == "" {
		provider = s.provider.Name()
	}
	method := in.Method
	if method == "" {
		method = "provider_webhook"
	}

	result := &ProviderWebhookResult{UserID: in.UserID, Status: outcome}

	if outcome == OutcomePending {
		return result, nil
	}

	// Terminal outcome: close the matching session if one is still open.
	// A missing or already-terminal session is fine; webhook delivery can
	// race a newer StartSession call or repeat itself.
	s.completeSession(ctx, in, outcome, method)

	if outcome == OutcomeFailed {
		// Failure never downgrades the user record: a previously verified
		// user keeps EIGHTEEN_VERIFIED, the failed attempt lives on the
		// session audit trail only.
		return result, nil
	}

	if err := s.markUserVerified(ctx, in.UserID, provider, method, in.Reference, entity.AuditKindVerification); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkVerifiedByAdmin is the operator override: same terminal effects as a
// verified webhook, recorded with the admin_override audit kind. Callers must
// gate it behind the operator credential; it is never user-facing.
func (s *AgeVerificationService) MarkVerifiedByAdmin(ctx context.Context, in AdminVerificationInput) error {
	if in.UserID == 0 || in.Provider == "" || in.Method == "" {
		return fmt.Errorf("%w: userId, provider and method are required", apperrors.ErrValidation)
	}
	return s.markUserVerified(ctx, in.UserID, in.Provider, in.Method, in.Reference, entity.AuditKindAdminOverride)
}

// GetStatus assembles the age status payload for the authenticated user.
func (s *AgeVerificationService) GetStatus(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ExpireStaleSessions is called by the background sweep.
func (s *AgeVerificationService) ExpireStaleSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.ExpireStale(ctx, time.Now().Add(-s.sessionTTL))
}

// markUserVerified applies the user-level terminal effect of a successful
// verification. Keyed off the user record: if the user is already VERIFIED
// this is a no-op and no second audit entry is written.
func (s *AgeVerificationService) markUserVerified(ctx context.Context, userID uint, provider, method, reference, auditKind string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.AgeVerification != nil && user.AgeVerification.Status == entity.VerificationStatusVerified {
		// Duplicate terminal event. The earlier delivery may have failed
		// between the user update and the audit append; the retry must leave
		// exactly one entry behind, not zero and not two.
		return s.ensureVerificationAudit(ctx, user, auditKind)
	}

	now := time.Now()
	fromTier := user.ComputeTier(now)

	// One atomic write: verification state and cached tier together.
	updates := map[string]interface{}{
		"age_verification_status":      entity.VerificationStatusVerified,
		"age_verification_provider":    provider,
		"age_verification_method":      method,
		"age_verification_reference":   reference,
		"age_verification_verified_at": now,
		"age_tier":                     entity.TierEighteenVerified,
	}
	if err := s.userRepo.UpdateComplianceFields(ctx, userID, updates); err != nil {
		return err
	}

	entry := &entity.ComplianceAuditEntry{
		UserID:    userID,
		Kind:      auditKind,
		FromTier:  fromTier,
		ToTier:    entity.TierEighteenVerified,
		Provider:  provider,
		Method:    method,
		Reference: reference,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record verification audit entry: %w", err)
	}

	s.invalidateTierCache(ctx, userID)

	// Best effort: the webhook must not fail because an email bounced.
	if err := s.emailService.SendAgeVerifiedNotice(ctx, user.Email, provider); err != nil {
		log.Printf("[AgeVerificationService] failed to send verified notice to user %d: %v", userID, err)
	}

	return nil
}

// ensureVerificationAudit guarantees an already-verified user has the audit
// entry for their upgrade, appending it when the original write was lost.
func (s *AgeVerificationService) ensureVerificationAudit(ctx context.Context, user *entity.User, auditKind string) error {
	entries, err := s.auditRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to check verification audit trail: %w", err)
	}
	for _, e := range entries {
		if e.ToTier == entity.TierEighteenVerified {
			log.Printf("[AgeVerificationService] user %d already verified, ignoring duplicate terminal event", user.ID)
			return nil
		}
	}

	// Reconstruct the pre-verification tier from the fields the verification
	// did not touch.
	pre := *user
	pre.AgeVerification = nil

	entry := &entity.ComplianceAuditEntry{
		UserID:    user.ID,
		Kind:      auditKind,
		FromTier:  pre.ComputeTier(time.Now()),
		ToTier:    entity.TierEighteenVerified,
		Provider:  user.AgeVerification.Provider,
		Method:    user.AgeVerification.Method,
		Reference: user.AgeVerification.Reference,
	}
	log.Printf("[AgeVerificationService] backfilling missing verification audit entry for user %d", user.ID)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record verification audit entry: %w", err)
	}
	return nil
}

func (s *AgeVerificationService) completeSession(ctx context.Context, in ProviderWebhookInput, outcome VerificationOutcome, method string) {
	var session *entity.AgeVerificationSession
	var err error

	if in.SessionID != "" {
		session, err = s.sessionRepo.GetByID(ctx, in.SessionID)
	} else {
		session, err = s.sessionRepo.GetLatestStartedByUserID(ctx, in.UserID)
	}
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AgeVerificationService] session lookup failed for user %d: %v", in.UserID, err)
		}
		return
	}
	if session.UserID != in.UserID || session.IsTerminal() {
		return
	}

	status := entity.SessionStatusVerified
	if outcome == OutcomeFailed {
		status = entity.SessionStatusFailed
	}
	if _, err := s.sessionRepo.Complete(ctx, session.ID, status, method, in.Reference, in.RawPayload, time.Now()); err != nil {
		log.Printf("[AgeVerificationService] failed to close session %s: %v", session.ID, err)
	}
}

func (s *AgeVerificationService) invalidateTierCache(ctx context.Context, userID uint) {
	if s.tierCache == nil {
		return
	}
	if err := s.tierCache.Invalidate(ctx, userID); err != nil {
		log.Printf("[AgeVerificationService] failed to invalidate tier cache for user %d: %v", userID, err)
	}
}

func (s *AgeVerificationService) fallbackRedirectURL() string {
	base := s.frontendURL
	if base == "" {
		base = "https://growgram-app.com"
	}
	return fmt.Sprintf("%s/age-verify/pending?provider=%s", base, url.QueryEscape(s.provider.Name()))
}
