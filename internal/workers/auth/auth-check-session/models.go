// internal/workers/auth/auth-check-session/models.go
package authchecksession

import "time"

type Input struct {
	Token string `json:"token"`
}

type Output struct {
	Authenticated bool      `json:"authenticated"`
	UserID        int64     `json:"userId"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	IsAdmin       bool      `json:"isAdmin"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
