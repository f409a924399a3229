// internal/workers/subscriptions/query-subscriptions/validation.go
package querysubscriptions

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token", "scope"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Bearer token of the caller",
			},
			"scope": {
				Type:        "string",
				Description: "Which subscriptions to list",
				Enum:        []string{ScopeMine, ScopeAll, ScopeByPlan, ScopeByID, ScopeTopPlans},
			},
			"planId": {
				Type:    "integer",
				Minimum: validation.Float64Ptr(1),
			},
			"subscriptionId": {
				Type:    "integer",
				Minimum: validation.Float64Ptr(1),
			},
		},
		AdditionalProperties: true,
	}
}
