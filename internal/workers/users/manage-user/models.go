// internal/workers/users/manage-user/models.go
package manageuser

import "phoneplan-workers/internal/models"

const (
	ActionList   = "list"
	ActionGet    = "get"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// UserInput is a user document as sent by an administrator. Password is
// plain text and only leaves the worker as a bcrypt hash.
type UserInput struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

type Input struct {
	Token  string     `json:"token"`
	Action string     `json:"action"`
	UserID *int64     `json:"userId,omitempty"`
	User   *UserInput `json:"user,omitempty"`
}

type Output struct {
	Action  string        `json:"action"`
	UserID  int64         `json:"userId,omitempty"`
	User    *models.User  `json:"user,omitempty"`
	Users   []models.User `json:"users,omitempty"`
	Count   int           `json:"count"`
	Success bool          `json:"success"`
}
