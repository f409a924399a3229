// internal/workers/auth/auth-check-session/validation.go
package authchecksession

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Bearer token to inspect",
				MaxLength:   validation.IntPtr(2000),
			},
		},
		AdditionalProperties: true,
	}
}
