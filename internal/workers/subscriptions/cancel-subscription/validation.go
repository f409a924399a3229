// internal/workers/subscriptions/cancel-subscription/validation.go
package cancelsubscription

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token", "subscriptionId"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Bearer token of the caller",
			},
			"subscriptionId": {
				Type:        "integer",
				Description: "Subscription to cancel",
				Minimum:     validation.Float64Ptr(1),
			},
		},
		AdditionalProperties: true,
	}
}
