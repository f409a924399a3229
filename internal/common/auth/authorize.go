// internal/common/auth/authorize.go
package auth

import (
	"context"
	"errors"

	apperrors "phoneplan-workers/internal/common/errors"
)

// RequireUser validates token and maps failures to TOKEN_INVALID. Revocation
// lookups that fail for infrastructure reasons stay retryable.
func RequireUser(ctx context.Context, v Validator, token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.NewTokenInvalidError(errors.New("missing token"))
	}
	id, err := v.Validate(ctx, token)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenRevoked) {
		return nil, apperrors.NewTokenInvalidError(err)
	}
	return nil, apperrors.NewDatabaseConnectionFailedError(err)
}

// RequireAdmin is RequireUser plus the admin role check.
func RequireAdmin(ctx context.Context, v Validator, token string) (*Identity, error) {
	id, err := RequireUser(ctx, v, token)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin {
		return nil, apperrors.NewAccessDeniedError("admin role required")
	}
	return id, nil
}
