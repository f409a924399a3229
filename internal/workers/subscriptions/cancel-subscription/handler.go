// internal/workers/subscriptions/cancel-subscription/handler.go
package cancelsubscription

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

const TaskType = "cancel-subscription"

type SubscriptionDeleter interface {
	Get(ctx context.Context, id int64) (*models.Subscription, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	config        *Config
	subscriptions SubscriptionDeleter
	tokens        auth.Validator
	errors        *apperrors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, subscriptions SubscriptionDeleter, tokens auth.Validator, log logger.Logger) *Handler {
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

	notFound := apperrors.NewSubscriptionNotFoundError(fmt.Sprintf("subscriptionId: %d", input.SubscriptionID))

	sub, err := h.subscriptions.Get(ctx, input.SubscriptionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}

	if !caller.CanAccessUser(sub.UserID) {
		return nil, apperrors.NewAccessDeniedError("subscription belongs to another user")
	}

	// a concurrent cancel may have removed it since the lookup
	if err := h.subscriptions.Delete(ctx, sub.ID); errors.Is(err, store.ErrNotFound) {
		return nil, notFound
	} else if err != nil {
		return nil, err
	}

	h.logger.Info("subscription cancelled", map[string]interface{}{
		"subscriptionId": sub.ID,
		"ownerId":        sub.UserID,
		"callerId":       caller.UserID,
	})
	return &Output{SubscriptionID: sub.ID, Cancelled: true}, nil
}
