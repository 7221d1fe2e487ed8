// Package auth exchanges credentials for bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/validate"
	"bookreview/internal/user"
)

var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	User        user.User `json:"user"`
}

type Service struct {
	secret      string
	ttl         time.Duration
	userService *user.Service
}

func NewService(secret string, ttl time.Duration, userService *user.Service) *Service {
	return &Service{secret: secret, ttl: ttl, userService: userService}
}

// Login verifies the credentials and issues an access token. Unknown
// emails and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (Token, error) {
	in.Email = user.NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return Token{}, err
	}

	u, err := s.userService.GetByEmail(ctx, in.Email)
	if errors.Is(err, user.ErrNotFound) {
		return Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, in.Password) {
		return Token{}, ErrInvalidCredentials
	}

	accessToken, err := crypto.GenerateToken(s.secret, u.ID, s.ttl)
	if err != nil {
		return Token{}, fmt.Errorf("generate token: %w", err)
	}
	return Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		User:        u,
	}, nil
}
