// internal/workers/plans/manage-plan/handler.go
package manageplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/camunda"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/validation"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "manage-plan"

// PlanWriter mutates the catalog. Implementations invalidate any cached
// catalog on success.
type PlanWriter interface {
	Create(ctx context.Context, p *models.Plan) (int64, error)
	Update(ctx context.Context, p *models.Plan) error
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	config *Config
	plans  PlanWriter
	tokens auth.Validator
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, plans PlanWriter, tokens auth.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		plans:  plans,
		tokens: tokens,
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
	caller, err := auth.RequireAdmin(ctx, h.tokens, input.Token)
	if err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	out := &Output{Action: input.Action}
	switch input.Action {
	case ActionCreate:
		id, err := h.plans.Create(ctx, input.Plan)
		if err != nil {
			return nil, err
		}
		out.PlanID = id

	case ActionUpdate:
		if err := h.plans.Update(ctx, input.Plan); err != nil {
			return nil, planError(err, input.Plan.ID)
		}
		out.PlanID = input.Plan.ID

	case ActionDelete:
		if err := h.plans.Delete(ctx, *input.PlanID); err != nil {
			return nil, planError(err, *input.PlanID)
		}
		out.PlanID = *input.PlanID
	}

	out.Success = true
	h.logger.Info("plan catalog changed", map[string]interface{}{
		"action": input.Action,
		"planId": out.PlanID,
		"userId": caller.UserID,
	})
	return out, nil
}

// validateInput checks the action's required fields and the plan document.
func validateInput(input *Input) error {
	result, err := validation.Validate(input, GetInputSchema())
	if err != nil {
		return apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		return apperrors.NewPlanValidationFailedError(result.String())
	}

	switch input.Action {
	case ActionCreate:
		if input.Plan == nil {
			return apperrors.NewPlanValidationFailedError("plan is required for create")
		}
	case ActionUpdate:
		if input.Plan == nil || input.PlanID == nil {
			return apperrors.NewPlanValidationFailedError("planId and plan are required for update")
		}
		if input.Plan.ID != *input.PlanID {
			return apperrors.NewPlanValidationFailedError(
				fmt.Sprintf("plan id %d does not match planId %d", input.Plan.ID, *input.PlanID))
		}
	case ActionDelete:
		if input.PlanID == nil {
			return apperrors.NewPlanValidationFailedError("planId is required for delete")
		}
	}
	return nil
}

func planError(err error, id int64) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NewPlanNotFoundError(id)
	case errors.Is(err, store.ErrInUse):
		return apperrors.NewPlanValidationFailedError(fmt.Sprintf("plan %d still has subscriptions", id))
	}
	return err
}
