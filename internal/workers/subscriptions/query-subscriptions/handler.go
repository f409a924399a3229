// internal/workers/subscriptions/query-subscriptions/handler.go
package querysubscriptions

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

const TaskType = "query-subscriptions"

type SubscriptionReader interface {
	Get(ctx context.Context, id int64) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID int64) ([]models.UserSubscription, error)
	ListAll(ctx context.Context) ([]models.Subscription, error)
	ListByPlan(ctx context.Context, planID int64) ([]models.Subscription, error)
	TopPlans(ctx context.Context) ([]models.PlanPopularity, error)
}

type Handler struct {
	config        *Config
	subscriptions SubscriptionReader
	tokens        auth.Validator
	errors        *apperrors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, subscriptions SubscriptionReader, tokens auth.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:        config,
		subscriptions: subscriptions,
		tokens:        tokens,
		errors:        apperrors.NewErrorHandler(log),
		logger:        log,
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
	caller, err := auth.RequireUser(ctx, h.tokens, input.Token)
	if err != nil {
		return nil, err
	}

	result, err := validation.Validate(input, GetInputSchema())
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(errors.New(result.String()))
	}

	if input.Scope != ScopeMine && !caller.IsAdmin {
		return nil, apperrors.NewAccessDeniedError(fmt.Sprintf("scope %q requires the admin role", input.Scope))
	}

	out := &Output{Scope: input.Scope}
	switch input.Scope {
	case ScopeMine:
		out.UserSubscriptions, err = h.subscriptions.ListByUser(ctx, caller.UserID)
		out.Count = len(out.UserSubscriptions)

	case ScopeAll:
		out.Subscriptions, err = h.subscriptions.ListAll(ctx)
		out.Count = len(out.Subscriptions)

	case ScopeByPlan:
		if input.PlanID == nil {
			return nil, apperrors.NewInvalidInputError(errors.New("planId is required for scope by-plan"))
		}
		out.Subscriptions, err = h.subscriptions.ListByPlan(ctx, *input.PlanID)
		if err == nil && len(out.Subscriptions) == 0 {
			return nil, apperrors.NewSubscriptionNotFoundError(fmt.Sprintf("planId: %d", *input.PlanID))
		}
		out.Count = len(out.Subscriptions)

	case ScopeByID:
		if input.SubscriptionID == nil {
			return nil, apperrors.NewInvalidInputError(errors.New("subscriptionId is required for scope by-id"))
		}
		var sub *models.Subscription
		sub, err = h.subscriptions.Get(ctx, *input.SubscriptionID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewSubscriptionNotFoundError(fmt.Sprintf("subscriptionId: %d", *input.SubscriptionID))
		}
		if err == nil {
			out.Subscriptions = []models.Subscription{*sub}
			out.Count = 1
		}

	case ScopeTopPlans:
		out.TopPlans, err = h.subscriptions.TopPlans(ctx)
		out.Count = len(out.TopPlans)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Debug("subscriptions listed", map[string]interface{}{
		"scope":    input.Scope,
		"count":    out.Count,
		"callerId": caller.UserID,
	})
	return out, nil
}
