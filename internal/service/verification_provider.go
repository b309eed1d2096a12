package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// VerificationOutcome is the canonical vocabulary every provider-specific
// status is normalized into before any business logic runs.
type VerificationOutcome string

const (
	OutcomeVerified VerificationOutcome = "verified"
	OutcomePending  VerificationOutcome = "pending"
	OutcomeFailed   VerificationOutcome = "failed"
)

// NormalizeProviderStatus maps a raw provider status onto the canonical
// vocabulary. Unrecognized values are a malformed payload, not a failure:
// we must not record a FAILED attempt off data we cannot interpret.
func NormalizeProviderStatus(raw string) (VerificationOutcome, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "verified", "approved", "success", "passed":
		return OutcomeVerified, nil
	case "pending", "in_progress", "processing":
		return OutcomePending, nil
	case "failed", "rejected", "declined", "error":
		return OutcomeFailed, nil
	default:
		return "", fmt.Errorf("%w: unrecognized provider status %q", ErrMalformedWebhookPayload, raw)
	}
}

// ProviderSession is what the external provider hands back when a
// verification session is opened.
type ProviderSession struct {
	SessionID   string
	RedirectURL string
}

// VerificationProvider opens verification sessions at an external service.
type VerificationProvider interface {
	// CreateSession registers a verification attempt with the provider and
	// returns the URL the user is sent to. The context carries the bounded
	// timeout; a deadline error must be treated by the caller as a pending
	// outcome, never as a failed verification.
	CreateSession(ctx context.Context, userID uint, redirectURL string) (*ProviderSession, error)

	// Name is the provider identifier recorded on sessions and audit entries.
	Name() string
}

// HTTPVerificationProvider talks to a KJM-conformant verification service
// over its REST API.
type HTTPVerificationProvider struct {
	name     string
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPVerificationProvider creates a provider client. timeout bounds every
// CreateSession call.
func NewHTTPVerificationProvider(name, endpoint, apiKey string, timeout time.Duration) (*HTTPVerificationProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("provider endpoint is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPVerificationProvider{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name implements VerificationProvider.
func (p *HTTPVerificationProvider) Name() string {
	return p.name
}

// CreateSession implements VerificationProvider.
func (p *HTTPVerificationProvider) CreateSession(ctx context.Context, userID uint, redirectURL string) (*ProviderSession, error) {
	payload := map[string]interface{}{
		"external_user_id": fmt.Sprintf("%d", userID),
		"redirect_url":     redirectURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider session request returned status %d", resp.StatusCode)
	}

	var out struct {
		SessionID   string `json:"session_id"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	return &ProviderSession{SessionID: out.SessionID, RedirectURL: out.RedirectURL}, nil
}

// StubVerificationProvider is used when no real provider is configured: it
// returns a frontend pending page so the client flow keeps working.
type StubVerificationProvider struct {
	name        string
	frontendURL string
}

// NewStubVerificationProvider creates the stub.
func NewStubVerificationProvider(name, frontendURL string) *StubVerificationProvider {
	if name == "" {
		name = "KJM_PROVIDER"
	}
	if frontendURL == "" {
		frontendURL = "https://growgram-app.com"
	}
	return &StubVerificationProvider{
		name:        name,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Name implements VerificationProvider.
func (p *StubVerificationProvider) Name() string {
	return p.name
}

// CreateSession implements VerificationProvider.
func (p *StubVerificationProvider) CreateSession(ctx context.Context, userID uint, redirectURL string) (*ProviderSession, error) {
	if redirectURL == "" {
		redirectURL = fmt.Sprintf("%s/age-verify/pending?provider=%s", p.frontendURL, url.QueryEscape(p.name))
	}
	return &ProviderSession{RedirectURL: redirectURL}, nil
}
