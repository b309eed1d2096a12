package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/domain/repository"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
	"github.com/growgram/growgram-api/pkg/auth"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	BirthDate *time.Time
}

// AuthResult is returned from Register and Login.
type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// AccountService handles registration and login. It exists so the age gates
// have real identities to resolve; everything age-related still flows through
// the compliance and verification services.
type AccountService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAccountService creates a new account service.
func NewAccountService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AccountService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	return &AccountService{userRepo: userRepo, jwtService: jwtService}, nil
}

// Register creates an account. The optional birth date feeds the tier model;
// it does not by itself grant any tier above UNKNOWN.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: username, email and a password of at least 8 characters are required", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Username:  username,
		Email:     email,
		Password:  in.Password, // hashed by the BeforeSave hook
		BirthDate: in.BirthDate,
		AgeTier:   entity.TierUnknown,
	}
	user.AgeTier = user.ComputeTier(time.Now())

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
