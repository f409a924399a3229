// internal/workers/subscriptions/cancel-subscription/models.go
package cancelsubscription

type Input struct {
	Token          string `json:"token"`
	SubscriptionID int64  `json:"subscriptionId"`
}

type Output struct {
	SubscriptionID int64 `json:"subscriptionId"`
	Cancelled      bool  `json:"cancelled"`
}
