// internal/workers/auth/auth-logout/validation.go
package authlogout

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"token"},
		Properties: map[string]validation.Property{
			"token": {
				Type:        "string",
				Description: "Authentication token to revoke",
				MinLength:   validation.IntPtr(10),
				MaxLength:   validation.IntPtr(2000),
			},
			"reason": {
				Type:        "string",
				Description: "Reason for logout",
				MaxLength:   validation.IntPtr(500),
			},
		},
		AdditionalProperties: true,
	}
}
