// internal/workers/subscriptions/update-subscription/models.go
package updatesubscription

// Changes are the fields an administrator may rewrite on a subscription.
type Changes struct {
	ID          int64  `json:"id,omitempty"`
	UserID      int64  `json:"userId"`
	PlanID      int64  `json:"planId"`
	PhoneNumber string `json:"phoneNumber"`
}

type Input struct {
	Token          string   `json:"token"`
	SubscriptionID int64    `json:"subscriptionId"`
	Subscription   *Changes `json:"subscription,omitempty"`
}

type Output struct {
	SubscriptionID int64  `json:"subscriptionId"`
	UserID         int64  `json:"userId"`
	PlanID         int64  `json:"planId"`
	PhoneNumber    string `json:"phoneNumber"`
	Updated        bool   `json:"updated"`
}
