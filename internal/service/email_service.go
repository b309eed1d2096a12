package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendAgeVerifiedNotice(ctx context.Context, toEmail, provider string) error
}

// NoopEmailService is used when outbound email is disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendAgeVerifiedNotice(ctx context.Context, toEmail, provider string) error {
	log.Printf("[EmailService] noop send age-verified notice to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via the Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendAgeVerifiedNotice(ctx context.Context, toEmail, provider string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Your age verification is complete",
		Text:    fmt.Sprintf("Your age was verified via %s. The 18+ areas of GrowGram are now available to your account.", provider),
		Html:    fmt.Sprintf("<p>Your age was verified via <strong>%s</strong>.</p><p>The 18+ areas of GrowGram are now available to your account.</p>", provider),
	}

	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(fmt.Sprintf("age-verified:%s:%s", toEmail, provider)); key != "" {
		options.IdempotencyKey = key
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
	return fmt.Errorf("failed to send age-verified notice after retries: %w", lastErr)
}
