// internal/models/subscription.go
package models

import "time"

// Subscription links a user and a phone number to a plan.
type Subscription struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	PlanID       int64     `json:"planId" db:"plan_id"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	SubscribedAt time.Time `json:"subscribedAt" db:"subscribed_at"`
}

// UserSubscription is a subscription listed for its owner, with the plan name resolved.
type UserSubscription struct {
	ID           int64     `json:"id"`
	PhoneNumber  string    `json:"phoneNumber"`
	SubscribedAt time.Time `json:"subscribedAt"`
	PlanName     string    `json:"planName"`
}

// PlanPopularity is the number of subscriptions held by one plan.
type PlanPopularity struct {
	PlanID             int64 `json:"planId"`
	TotalSubscriptions int   `json:"totalSubscriptions"`
}
