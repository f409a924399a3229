// internal/workers/plans/manage-plan/validation.go
package manageplan

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token", "action"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Bearer token of the caller",
			},
			"action": {
				Type:        "string",
				Description: "Catalog mutation to perform",
				Enum:        []string{ActionCreate, ActionUpdate, ActionDelete},
			},
			"planId": {
				Type:        "integer",
				Description: "Plan to update or delete",
				Minimum:     validation.Float64Ptr(1),
			},
			"plan": validation.PlanProperty(),
		},
		AdditionalProperties: true,
	}
}
