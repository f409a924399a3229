// internal/workers/plans/query-plans/models.go
package queryplans

import "phoneplan-workers/internal/models"

// Input selects one plan by id, or the plans of a carrier. An empty carrier
// or the all-carriers value selects the whole catalog.
type Input struct {
	PlanID  *int64 `json:"planId,omitempty"`
	Carrier string `json:"carrier,omitempty"`
}

type Output struct {
	Plans []models.Plan `json:"plans"`
	Count int           `json:"count"`
}
