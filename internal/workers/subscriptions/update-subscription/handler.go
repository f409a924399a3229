// internal/workers/subscriptions/update-subscription/handler.go
package updatesubscription

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

const TaskType = "update-subscription"

type SubscriptionUpdater interface {
	Update(ctx context.Context, sub *models.Subscription) error
}

type Handler struct {
	config        *Config
	subscriptions SubscriptionUpdater
	tokens        auth.Validator
	errors        *apperrors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, subscriptions SubscriptionUpdater, tokens auth.Validator, log logger.Logger) *Handler {
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
	caller, err := auth.RequireAdmin(ctx, h.tokens, input.Token)
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
	changes := input.Subscription
	if changes.ID != 0 && changes.ID != input.SubscriptionID {
		return nil, apperrors.NewInvalidInputError(
			fmt.Errorf("subscription id %d does not match subscriptionId %d", changes.ID, input.SubscriptionID))
	}

	sub := &models.Subscription{
		ID:          input.SubscriptionID,
		UserID:      changes.UserID,
		PlanID:      changes.PlanID,
		PhoneNumber: changes.PhoneNumber,
	}
	err = h.subscriptions.Update(ctx, sub)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperrors.NewSubscriptionNotFoundError(fmt.Sprintf("subscriptionId: %d", sub.ID))
	case errors.Is(err, store.ErrDuplicatePhone):
		return nil, apperrors.NewSubscriptionDuplicateError(sub.PhoneNumber)
	case errors.Is(err, store.ErrInvalidReference):
		return nil, apperrors.NewSubscriptionReferenceInvalidError(
			fmt.Sprintf("userId: %d, planId: %d", sub.UserID, sub.PlanID))
	case err != nil:
		return nil, err
	}

	h.logger.Info("subscription updated", map[string]interface{}{
		"subscriptionId": sub.ID,
		"ownerId":        sub.UserID,
		"planId":         sub.PlanID,
		"callerId":       caller.UserID,
	})
	return &Output{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		PlanID:         sub.PlanID,
		PhoneNumber:    sub.PhoneNumber,
		Updated:        true,
	}, nil
}
