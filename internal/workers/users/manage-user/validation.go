// internal/workers/users/manage-user/validation.go
package manageuser

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
				Description: "User operation to perform",
				Enum:        []string{ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete},
			},
			"userId": {
				Type:        "integer",
				Description: "User to read, update or delete",
				Minimum:     validation.Float64Ptr(1),
			},
			"user": {
				Type:     "object",
				Required: []string{"name", "email"},
				Properties: map[string]validation.Property{
					"id":       {Type: "integer", Minimum: validation.Float64Ptr(0)},
					"name":     {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(100)},
					"email":    {Type: "string", Format: "email", MaxLength: validation.IntPtr(254)},
					"phone":    validation.PhoneNumberProperty(),
					"password": {Type: "string", MinLength: validation.IntPtr(8), MaxLength: validation.IntPtr(72)},
					"isAdmin":  {Type: "boolean"},
				},
			},
		},
		AdditionalProperties: true,
	}
}
