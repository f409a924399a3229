// internal/workers/subscriptions/query-subscriptions/models.go
package querysubscriptions

import "phoneplan-workers/internal/models"

const (
	ScopeMine     = "mine"
	ScopeAll      = "all"
	ScopeByPlan   = "by-plan"
	ScopeByID     = "by-id"
	ScopeTopPlans = "top-plans"
)

type Input struct {
	Token          string `json:"token"`
	Scope          string `json:"scope"`
	PlanID         *int64 `json:"planId,omitempty"`
	SubscriptionID *int64 `json:"subscriptionId,omitempty"`
}

// Output carries the list matching the scope; the other lists are omitted.
type Output struct {
	Scope             string                    `json:"scope"`
	Count             int                       `json:"count"`
	Subscriptions     []models.Subscription     `json:"subscriptions,omitempty"`
	UserSubscriptions []models.UserSubscription `json:"userSubscriptions,omitempty"`
	TopPlans          []models.PlanPopularity   `json:"topPlans,omitempty"`
}
