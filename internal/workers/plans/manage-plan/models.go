// internal/workers/plans/manage-plan/models.go
package manageplan

import "phoneplan-workers/internal/models"

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Input struct {
	Token  string       `json:"token"`
	Action string       `json:"action"`
	PlanID *int64       `json:"planId,omitempty"`
	Plan   *models.Plan `json:"plan,omitempty"`
}

type Output struct {
	Action  string `json:"action"`
	PlanID  int64  `json:"planId"`
	Success bool   `json:"success"`
}
