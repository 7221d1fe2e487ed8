package user

import (
	"context"
	"fmt"

	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/validate"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account. The email is matched case-insensitively.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if uuid.Validate(id) != nil {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}
