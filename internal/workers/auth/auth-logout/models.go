// internal/workers/auth/auth-logout/models.go
package authlogout

import (
	"time"

	"phoneplan-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	Token  string `json:"token"`
	Reason string `json:"reason,omitempty"`
}

type Output struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	TokenRevoked bool      `json:"tokenRevoked"`
	LogoutAt     time.Time `json:"logoutAt"`
}

type ServiceDependencies struct {
	Tokens Revoker
	// optional; logout events are not recorded without it
	Redis  redis.Cmdable
	Logger logger.Logger
}
