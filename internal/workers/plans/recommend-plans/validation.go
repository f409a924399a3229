// internal/workers/plans/recommend-plans/validation.go
package recommendplans

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"preferences"},
		Properties: map[string]validation.Property{
			"preferences": validation.PreferencesProperty(),
		},
		AdditionalProperties: true,
	}
}
