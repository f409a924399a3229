// Package recommendation ranks phone plans against a caller's preferences.
//
// Each plan gets a weighted preference score computed from attributes
// normalized against the catalog maxima, and an unweighted similarity
// percentage measuring how close the plan is to the requested values. The
// two are blended into a hybrid score in [0,1] that orders the result.
package recommendation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/models"
)

// DefaultTopN is the number of plans returned by Recommend.
const DefaultTopN = 3

const (
	scoreBlend      = 0.5
	similarityBlend = 0.5
)

var (
	ErrEmptyCatalog     = errors.New("PLAN_CATALOG_EMPTY")
	ErrComputationFault = errors.New("RECOMMENDATION_FAILED")
)

// ScoredPlan is a catalog plan together with its ranking scores.
type ScoredPlan struct {
	Plan        models.Plan `json:"plan"`
	Score       float64     `json:"score"`
	Similarity  float64     `json:"similarity"`
	HybridScore float64     `json:"hybridScore"`
	Factors     Factors     `json:"factors"`
}

// Factors exposes the intermediate values behind a ScoredPlan.
type Factors struct {
	NormCost    float64 `json:"normCost"`
	NormData    float64 `json:"normData"`
	NormMinutes float64 `json:"normMinutes"`
	NormSMS     float64 `json:"normSms"`

	CostSimilarity    float64 `json:"costSimilarity"`
	DataSimilarity    float64 `json:"dataSimilarity"`
	MinutesSimilarity float64 `json:"minutesSimilarity"`
	SMSSimilarity     float64 `json:"smsSimilarity"`
	// nil when the caller expressed no carrier preference
	CarrierMatch *float64 `json:"carrierMatch,omitempty"`
}

// Engine ranks plan catalogs. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	topN   int
	logger logger.Logger
}

var defaultEngine = NewEngine(DefaultTopN, nil)

// NewEngine returns an engine that keeps the topN best plans. A nil logger
// disables diagnostic logging.
func NewEngine(topN int, log logger.Logger) *Engine {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{topN: topN, logger: log}
}

// Recommend ranks plans with the default engine.
func Recommend(plans []models.Plan, prefs Preferences) ([]ScoredPlan, error) {
	return defaultEngine.Recommend(plans, prefs)
}

// TopN returns how many plans the engine keeps.
func (e *Engine) TopN() int {
	return e.topN
}

// Recommend scores every plan in the catalog and returns the best ones
// ordered by descending hybrid score. Plans with equal scores keep their
// catalog order.
func (e *Engine) Recommend(plans []models.Plan, prefs Preferences) (result []ScoredPlan, err error) {
	if len(plans) == 0 {
		return nil, ErrEmptyCatalog
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrComputationFault, r)
		}
	}()

	weights := prefs.Weights().Normalize()
	maxima := catalogMaxima(plans)

	scored := make([]ScoredPlan, 0, len(plans))
	for _, plan := range plans {
		sp := scorePlan(plan, prefs, weights, maxima)
		if err := sp.checkFinite(); err != nil {
			return nil, err
		}

		e.logger.Debug("plan scored", map[string]interface{}{
			"planId":      plan.ID,
			"score":       sp.Score,
			"similarity":  sp.Similarity,
			"hybridScore": sp.HybridScore,
		})
		scored = append(scored, sp)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].HybridScore > scored[j].HybridScore
	})

	if len(scored) > e.topN {
		scored = scored[:e.topN]
	}
	return scored, nil
}

type maxima struct {
	cost    float64
	data    float64
	minutes float64
	sms     float64
}

func catalogMaxima(plans []models.Plan) maxima {
	var m maxima
	for i, p := range plans {
		if i == 0 || p.Cost > m.cost {
			m.cost = p.Cost
		}
		m.data = math.Max(m.data, float64(p.Data))
		m.minutes = math.Max(m.minutes, float64(p.Minutes))
		m.sms = math.Max(m.sms, float64(p.SMS))
	}
	return m
}

func scorePlan(plan models.Plan, prefs Preferences, w Weights, m maxima) ScoredPlan {
	f := Factors{
		NormData:    ratio(float64(plan.Data), m.data),
		NormMinutes: ratio(float64(plan.Minutes), m.minutes),
		NormSMS:     ratio(float64(plan.SMS), m.sms),
	}
	// lower cost is better
	if m.cost != 0 {
		f.NormCost = 1 - plan.Cost/m.cost
	}

	score := w.Cost*f.NormCost +
		w.Data*f.NormData +
		w.Minutes*f.NormMinutes +
		w.SMS*f.NormSMS

	f.CostSimilarity = closeness(prefs.Cost, plan.Cost)
	f.DataSimilarity = closeness(float64(prefs.Data), float64(plan.Data))
	f.MinutesSimilarity = closeness(float64(prefs.Minutes), float64(plan.Minutes))
	f.SMSSimilarity = closeness(float64(prefs.SMS), float64(plan.SMS))

	terms := f.CostSimilarity + f.DataSimilarity + f.MinutesSimilarity + f.SMSSimilarity
	divisor := 4.0
	if prefs.HasCarrier() {
		match := 0.0
		if plan.Carrier == prefs.Carrier {
			match = 1.0
		}
		f.CarrierMatch = &match
		terms += match
		divisor = 5.0
	}
	similarity := 100 * terms / divisor

	return ScoredPlan{
		Plan:        plan,
		Score:       score,
		Similarity:  similarity,
		HybridScore: scoreBlend*score + similarityBlend*(similarity/100),
		Factors:     f,
	}
}

func (sp ScoredPlan) checkFinite() error {
	for name, v := range map[string]float64{
		"score":       sp.Score,
		"similarity":  sp.Similarity,
		"hybridScore": sp.HybridScore,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite %s for plan %d", ErrComputationFault, name, sp.Plan.ID)
		}
	}
	return nil
}

// ratio returns value/max, or 0 when max is 0.
func ratio(value, max float64) float64 {
	if max == 0 {
		return 0
	}
	return value / max
}

// closeness is the symmetric relative closeness 1 - |a-b|/max(a,b).
// Two zero values are a perfect match.
func closeness(want, have float64) float64 {
	denom := math.Max(want, have)
	if denom == 0 {
		if want == 0 && have == 0 {
			return 1
		}
		return 0
	}
	return 1 - math.Abs(want-have)/denom
}
