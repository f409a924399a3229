// internal/common/validation/plans.go
package validation

// PreferencesProperty describes a caller's desired plan values and weights.
// Every value and weight is non-negative.
func PreferencesProperty() Property {
	nonNegative := func(typ, desc string) Property {
		return Property{Type: typ, Description: desc, Minimum: Float64Ptr(0)}
	}
	return Property{
		Type: "object",
		Properties: map[string]Property{
			"cost":          nonNegative("number", "Desired monthly cost"),
			"data":          nonNegative("integer", "Desired data allowance"),
			"minutes":       nonNegative("integer", "Desired minutes"),
			"sms":           nonNegative("integer", "Desired SMS count"),
			"carrier":       {Type: "string", Description: "Preferred carrier, empty for none", MaxLength: IntPtr(100)},
			"weightCost":    nonNegative("number", "Importance of cost"),
			"weightData":    nonNegative("number", "Importance of data"),
			"weightMinutes": nonNegative("number", "Importance of minutes"),
			"weightSms":     nonNegative("number", "Importance of SMS"),
		},
	}
}

// PlanProperty describes a catalog plan as accepted by plan management.
func PlanProperty() Property {
	return Property{
		Type:     "object",
		Required: []string{"name", "cost", "data", "minutes", "sms", "carrier"},
		Properties: map[string]Property{
			"id":            {Type: "integer", Minimum: Float64Ptr(0)},
			"name":          {Type: "string", MinLength: IntPtr(1), MaxLength: IntPtr(100)},
			"cost":          {Type: "number", Minimum: Float64Ptr(0)},
			"data":          {Type: "integer", Minimum: Float64Ptr(0)},
			"minutes":       {Type: "integer", Minimum: Float64Ptr(0)},
			"sms":           {Type: "integer", Minimum: Float64Ptr(0)},
			"carrier":       {Type: "string", MinLength: IntPtr(1), MaxLength: IntPtr(100)},
			"extraBenefits": {Type: "string", MaxLength: IntPtr(500)},
		},
	}
}

// PhoneNumberProperty accepts 7 to 15 digits with an optional leading plus.
func PhoneNumberProperty() Property {
	return Property{
		Type:        "string",
		Description: "Subscribed phone number",
		Pattern:     `^\+?[0-9]{7,15}$`,
	}
}
