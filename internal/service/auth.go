package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/repository"
)

var (
	ErrUsernameTaken = repository.ErrUsernameTaken
	ErrWrongPassword = errors.New("wrong password")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

type AuthService struct {
	repo         AuthUserRepository
	startingCash decimal.Decimal
}

func NewAuthService(repo AuthUserRepository, startingCash decimal.Decimal) *AuthService {
	return &AuthService{
		repo:         repo,
		startingCash: startingCash,
	}
}

// Signup creates the user with a bcrypt-hashed password and the configured
// starting cash. Username uniqueness is enforced by the store; a duplicate
// surfaces as ErrUsernameTaken.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = string(hash)
	user.Cash = s.startingCash

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return domain.User{}, ErrUsernameTaken
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}
