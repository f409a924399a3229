// internal/workers/auth/auth-login/models.go
package authlogin

import (
	"time"

	"phoneplan-workers/internal/common/logger"
)

type Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Output struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	Role      string    `json:"role"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ServiceDependencies struct {
	Users  UserFinder
	Tokens TokenIssuer
	Logger logger.Logger
}
