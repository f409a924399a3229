// internal/models/plan.go
package models

// AllCarriers is the carrier filter value that selects every plan.
const AllCarriers = "Todas las Operadoras"

// Plan represents a purchasable phone-service offering.
type Plan struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	Cost          float64 `json:"cost" db:"cost"`
	Data          int     `json:"data" db:"data"`
	Minutes       int     `json:"minutes" db:"minutes"`
	SMS           int     `json:"sms" db:"sms"`
	Carrier       string  `json:"carrier" db:"carrier"`
	ExtraBenefits *string `json:"extraBenefits,omitempty" db:"extra_benefits"`
}

// IsAllCarriers reports whether a carrier filter means "no filter".
func IsAllCarriers(carrier string) bool {
	return carrier == "" || carrier == AllCarriers || carrier == "all"
}
