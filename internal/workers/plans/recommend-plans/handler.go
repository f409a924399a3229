// internal/workers/plans/recommend-plans/handler.go
package recommendplans

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"phoneplan-workers/internal/common/camunda"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/metrics"
	"phoneplan-workers/internal/common/validation"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "recommend-plans"

// PlanCatalog lists the full plan catalog.
type PlanCatalog interface {
	List(ctx context.Context) ([]models.Plan, error)
}

type Handler struct {
	config  *Config
	catalog PlanCatalog
	engine  *recommendation.Engine
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
	now     func() time.Time
}

func NewHandler(config *Config, catalog PlanCatalog, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		catalog: catalog,
		engine:  recommendation.NewEngine(config.TopN, log),
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
		now:     time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	return camunda.CompleteJob(ctx, client, job, output)
}

// parseInput checks the raw variables against the input schema before
// decoding, so a missing preferences object is reported rather than zeroed.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	result, err := validation.ValidateJSON([]byte(job.Variables), GetInputSchema())
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		metrics.ObserveRecommendation(metrics.OutcomeInvalid, 0)
		return nil, apperrors.NewPlanValidationFailedError(result.String())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	return &input, nil
}

// Execute is exported for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := validation.Validate(input, GetInputSchema())
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		metrics.ObserveRecommendation(metrics.OutcomeInvalid, 0)
		return nil, apperrors.NewPlanValidationFailedError(result.String())
	}

	plans, err := h.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	scored, err := h.engine.Recommend(plans, *input.Preferences)
	switch {
	case errors.Is(err, recommendation.ErrEmptyCatalog):
		metrics.ObserveRecommendation(metrics.OutcomeEmptyCatalog, 0)
		return nil, apperrors.NewPlanCatalogEmptyError()
	case err != nil:
		metrics.ObserveRecommendation(metrics.OutcomeFault, 0)
		return nil, apperrors.NewRecommendationFailedError(err)
	}

	recs := make([]Recommendation, len(scored))
	for i, sp := range scored {
		recs[i] = Recommendation{
			Plan:        sp.Plan,
			Score:       sp.Score,
			Similarity:  sp.Similarity,
			HybridScore: sp.HybridScore,
			Factors:     sp.Factors,
		}
	}
	metrics.ObserveRecommendation(metrics.OutcomeRecommended, recs[0].HybridScore)

	h.logger.Info("plans recommended", map[string]interface{}{
		"catalogSize": len(plans),
		"returned":    len(recs),
		"topPlanId":   recs[0].ID,
		"topScore":    recs[0].HybridScore,
	})

	return &Output{
		Recommendations: recs,
		CatalogSize:     len(plans),
		RecommendedAt:   h.now().UTC(),
	}, nil
}
