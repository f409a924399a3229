// internal/workers/subscriptions/update-subscription/validation.go
package updatesubscription

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token", "subscriptionId", "subscription"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Bearer token of the caller",
			},
			"subscriptionId": {
				Type:        "integer",
				Description: "Subscription to update",
				Minimum:     validation.Float64Ptr(1),
			},
			"subscription": {
				Type:     "object",
				Required: []string{"userId", "planId", "phoneNumber"},
				Properties: map[string]validation.Property{
					"id":          {Type: "integer", Minimum: validation.Float64Ptr(0)},
					"userId":      {Type: "integer", Minimum: validation.Float64Ptr(1)},
					"planId":      {Type: "integer", Minimum: validation.Float64Ptr(1)},
					"phoneNumber": validation.PhoneNumberProperty(),
				},
			},
		},
		AdditionalProperties: true,
	}
}
