// internal/workers/auth/auth-login/service.go
package authlogin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phoneplan-workers/internal/common/auth"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/validation"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"
)

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type Service struct {
	config *Config
	logger logger.Logger
	users  UserFinder
	tokens TokenIssuer
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		users:  deps.Users,
		tokens: deps.Tokens,
	}
}

// Execute checks the credentials and issues a bearer token. Unknown emails
// and wrong passwords fail the same way.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := validation.Validate(input, GetInputSchema())
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(errors.New(result.String()))
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("login rejected", map[string]interface{}{"reason": "unknown email"})
		return nil, apperrors.NewAuthenticationFailedError("email or password does not match")
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		s.logger.Warn("login rejected", map[string]interface{}{
			"reason": "password mismatch",
			"userId": user.ID,
		})
		return nil, apperrors.NewAuthenticationFailedError("email or password does not match")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("auth login completed", map[string]interface{}{
		"userId": user.ID,
		"role":   user.Role(),
	})

	return &Output{
		Token:     token,
		TokenType: "Bearer",
		Role:      user.Role(),
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}, nil
}
