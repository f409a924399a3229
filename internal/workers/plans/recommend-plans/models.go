// internal/workers/plans/recommend-plans/models.go
package recommendplans

import (
	"time"

	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/recommendation"
)

type Input struct {
	Preferences *recommendation.Preferences `json:"preferences,omitempty"`
}

// Recommendation flattens a plan's fields next to its ranking scores.
type Recommendation struct {
	models.Plan
	Score       float64                `json:"score"`
	Similarity  float64                `json:"similarity"`
	HybridScore float64                `json:"hybridScore"`
	Factors     recommendation.Factors `json:"factors"`
}

type Output struct {
	Recommendations []Recommendation `json:"recommendations"`
	CatalogSize     int              `json:"catalogSize"`
	RecommendedAt   time.Time        `json:"recommendedAt"`
}
