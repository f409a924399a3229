// internal/workers/subscriptions/create-subscription/models.go
package createsubscription

import (
	"time"

	"phoneplan-workers/internal/common/aws"
)

// Input subscribes a phone number to a plan. UserID defaults to the caller;
// only admins may name another user.
type Input struct {
	Token       string `json:"token"`
	PlanID      int64  `json:"planId"`
	PhoneNumber string `json:"phoneNumber"`
	UserID      *int64 `json:"userId,omitempty"`
}

type Output struct {
	SubscriptionID int64          `json:"subscriptionId"`
	UserID         int64          `json:"userId"`
	PlanID         int64          `json:"planId"`
	PhoneNumber    string         `json:"phoneNumber"`
	SubscribedAt   time.Time      `json:"subscribedAt"`
	Notifications  []aws.Delivery `json:"notifications"`
}
