package services

import (
	"context"

	"github.com/Dosada05/swiss-pairing/utils"
)

type LoginInput struct {
	Password string `json:"password"`
}

// AuthService checks the tournament director's password. Tokens are issued
// by the HTTP layer.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) error
}

type authService struct {
	passwordHash string
}

func NewAuthService(passwordHash string) AuthService {
	return &authService{passwordHash: passwordHash}
}

func (s *authService) Login(_ context.Context, input LoginInput) error {
	if s.passwordHash == "" {
		return ErrAuthNotConfigured
	}
	if input.Password == "" || !utils.CheckPasswordHash(input.Password, s.passwordHash) {
		return ErrInvalidCredentials
	}
	return nil
}
