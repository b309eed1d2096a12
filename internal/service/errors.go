package service

import "errors"

// Compliance/verification error taxonomy. Handlers translate these into the
// machine-readable error_type codes clients branch on.
var (
	// ErrInvalidComplianceInput: the acknowledgment misses a required
	// declaration (agree and over16 are mandatory).
	ErrInvalidComplianceInput = errors.New("invalid compliance input")

	// ErrAdultVerificationRequired: an identity is present but the tier is
	// below EIGHTEEN_VERIFIED. Distinct from ErrUnauthorized so clients can
	// route the user to the verification flow instead of the login screen.
	ErrAdultVerificationRequired = errors.New("adult verification required")

	// ErrMalformedWebhookPayload: the provider sent data we cannot interpret
	// (missing userId or unrecognized status). Logged, never retried by us.
	ErrMalformedWebhookPayload = errors.New("malformed webhook payload")

	// ErrEmailTaken / ErrUsernameTaken guard registration.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
