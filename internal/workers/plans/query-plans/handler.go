// internal/workers/plans/query-plans/handler.go
package queryplans

import (
	"context"
	"encoding/json"
	"errors"

	"phoneplan-workers/internal/common/camunda"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/validation"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "query-plans"

type PlanReader interface {
	Get(ctx context.Context, id int64) (*models.Plan, error)
	ListByCarrier(ctx context.Context, carrier string) ([]models.Plan, error)
}

type Handler struct {
	config *Config
	plans  PlanReader
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, plans PlanReader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		plans:  plans,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(err))
		return err
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	return camunda.CompleteJob(ctx, client, job, output)
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
		return nil, apperrors.NewInvalidInputError(errors.New(result.String()))
	}

	if input.PlanID != nil {
		plan, err := h.plans.Get(ctx, *input.PlanID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewPlanNotFoundError(*input.PlanID)
		}
		if err != nil {
			return nil, err
		}
		return &Output{Plans: []models.Plan{*plan}, Count: 1}, nil
	}

	plans, err := h.plans.ListByCarrier(ctx, input.Carrier)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("plans listed", map[string]interface{}{
		"carrier": input.Carrier,
		"count":   len(plans),
	})
	return &Output{Plans: plans, Count: len(plans)}, nil
}
