// Package authlogout revokes a caller's token.
package authlogout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/database"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/validation"

	"github.com/redis/go-redis/v9"
)

// Revoker validates and revokes tokens.
type Revoker interface {
	auth.Validator
	Revoke(ctx context.Context, id *auth.Identity) error
}

type Service struct {
	config *Config
	logger logger.Logger
	tokens Revoker
	redis  redis.Cmdable
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		tokens: deps.Tokens,
		redis:  deps.Redis,
		now:    time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := validation.Validate(input, GetInputSchema())
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewTokenInvalidError(errors.New(result.String()))
	}

	id, err := auth.RequireUser(ctx, s.tokens, input.Token)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, id); err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("revoke token: %w", err))
	}

	now := s.now().UTC()
	s.logLogoutEvent(ctx, id, input.Reason, now)

	s.logger.Info("auth logout completed", map[string]interface{}{
		"userId":  id.UserID,
		"tokenId": id.TokenID,
	})

	return &Output{
		Success:      true,
		Message:      "Logout successful",
		TokenRevoked: true,
		LogoutAt:     now,
	}, nil
}

// LogoutEventKey is the audit key of one logout.
func LogoutEventKey(userID int64, at time.Time) string {
	return fmt.Sprintf("auth:logout:event:%d:%d", userID, at.Unix())
}

// logLogoutEvent keeps an audit record of the logout. Failures are logged
// only; the token is already revoked.
func (s *Service) logLogoutEvent(ctx context.Context, id *auth.Identity, reason string, at time.Time) {
	if s.redis == nil || s.config.AuditTTL == 0 {
		return
	}
	event := map[string]interface{}{
		"userId":    id.UserID,
		"email":     id.Email,
		"tokenId":   id.TokenID,
		"reason":    reason,
		"timestamp": at.Unix(),
	}
	if err := database.SetJSON(ctx, s.redis, LogoutEventKey(id.UserID, at), event, s.config.AuditTTL); err != nil {
		s.logger.Warn("failed to record logout event", map[string]interface{}{
			"userId": id.UserID,
			"error":  err.Error(),
		})
	}
}
