// internal/workers/plans/query-plans/validation.go
package queryplans

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"planId": {
				Type:        "integer",
				Description: "Plan to fetch",
				Minimum:     validation.Float64Ptr(1),
			},
			"carrier": {
				Type:        "string",
				Description: "Carrier filter",
				MaxLength:   validation.IntPtr(100),
			},
		},
		AdditionalProperties: true,
	}
}
