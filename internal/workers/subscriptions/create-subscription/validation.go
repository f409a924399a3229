// internal/workers/subscriptions/create-subscription/validation.go
package createsubscription

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token", "planId", "phoneNumber"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Bearer token of the caller",
			},
			"planId": {
				Type:        "integer",
				Description: "Plan to subscribe to",
				Minimum:     validation.Float64Ptr(1),
			},
			"phoneNumber": validation.PhoneNumberProperty(),
			"userId": {
				Type:        "integer",
				Description: "Subscriber, admins only",
				Minimum:     validation.Float64Ptr(1),
			},
		},
		AdditionalProperties: true,
	}
}
