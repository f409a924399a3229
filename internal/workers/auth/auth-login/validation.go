// internal/workers/auth/auth-login/validation.go
package authlogin

import "phoneplan-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email", "password"},
		Properties: map[string]validation.Property{
			"email": {
				Type:        "string",
				Description: "User email address",
				Format:      "email",
				MaxLength:   validation.IntPtr(254),
			},
			"password": {
				Type:        "string",
				Description: "User password",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(72),
			},
		},
		AdditionalProperties: true,
	}
}
