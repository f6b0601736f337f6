package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

const passwordCost = 10

type AccountsRepo interface {
	Create(ctx context.Context, name, email, passwordHash string) (int64, error)
	GetByEmail(ctx context.Context, email string) (models.Account, error)
}

type AccountsService struct {
	Repo AccountsRepo
}

func (s *AccountsService) Register(ctx context.Context, name, email, password string) (int64, error) {
	if name == "" || email == "" || password == "" {
		return 0, apperr.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.Create(ctx, name, email, string(hash))
}

// Login returns apperr.ErrUnauthorized for an unknown email and for a wrong
// password alike.
func (s *AccountsService) Login(ctx context.Context, email, password string) (models.Account, error) {
	if email == "" || password == "" {
		return models.Account{}, apperr.ErrValidation
	}
	a, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Account{}, apperr.ErrUnauthorized
		}
		return models.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, apperr.ErrUnauthorized
	}
	return a, nil
}
