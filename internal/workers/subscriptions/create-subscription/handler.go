// internal/workers/subscriptions/create-subscription/handler.go
package createsubscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/aws"
	"phoneplan-workers/internal/common/camunda"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/validation"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "create-subscription"

type SubscriptionCreator interface {
	Create(ctx context.Context, sub *models.Subscription) (int64, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type PlanLookup interface {
	Get(ctx context.Context, id int64) (*models.Plan, error)
}

// Notifier confirms a new subscription to the subscriber.
type Notifier interface {
	ConfirmSubscription(ctx context.Context, c aws.SubscriptionConfirmation) []aws.Delivery
}

type Dependencies struct {
	Subscriptions SubscriptionCreator
	Users         UserLookup
	Plans         PlanLookup
	Tokens        auth.Validator
	// nil disables confirmations
	Notifier Notifier
}

type Handler struct {
	config *Config
	deps   Dependencies
	errors *apperrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		deps:   deps,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
		now:    time.Now,
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
	caller, err := auth.RequireUser(ctx, h.deps.Tokens, input.Token)
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

	userID := caller.UserID
	if input.UserID != nil {
		if !caller.CanAccessUser(*input.UserID) {
			return nil, apperrors.NewAccessDeniedError("only admins may subscribe other users")
		}
		userID = *input.UserID
	}

	sub := &models.Subscription{
		UserID:       userID,
		PlanID:       input.PlanID,
		PhoneNumber:  input.PhoneNumber,
		SubscribedAt: h.now().UTC(),
	}

	id, err := h.deps.Subscriptions.Create(ctx, sub)
	switch {
	case errors.Is(err, store.ErrDuplicatePhone):
		return nil, apperrors.NewSubscriptionDuplicateError(input.PhoneNumber)
	case errors.Is(err, store.ErrInvalidReference):
		return nil, apperrors.NewSubscriptionReferenceInvalidError(
			fmt.Sprintf("userId: %d, planId: %d", userID, input.PlanID))
	case err != nil:
		return nil, err
	}
	sub.ID = id

	h.logger.Info("subscription created", map[string]interface{}{
		"subscriptionId": id,
		"userId":         userID,
		"planId":         input.PlanID,
		"callerId":       caller.UserID,
	})

	return &Output{
		SubscriptionID: id,
		UserID:         userID,
		PlanID:         sub.PlanID,
		PhoneNumber:    sub.PhoneNumber,
		SubscribedAt:   sub.SubscribedAt,
		Notifications:  h.notify(ctx, sub),
	}, nil
}

// notify sends the confirmations for a stored subscription. Nothing here can
// fail the job: the subscription already exists.
func (h *Handler) notify(ctx context.Context, sub *models.Subscription) []aws.Delivery {
	if h.deps.Notifier == nil {
		return []aws.Delivery{}
	}

	c := aws.SubscriptionConfirmation{
		SubscriptionID: sub.ID,
		PhoneNumber:    sub.PhoneNumber,
	}
	if user, err := h.deps.Users.GetByID(ctx, sub.UserID); err == nil {
		c.UserName = user.Name
		c.Email = user.Email
	} else {
		h.logger.Warn("subscriber lookup failed", map[string]interface{}{
			"userId": sub.UserID,
			"error":  err.Error(),
		})
	}
	if plan, err := h.deps.Plans.Get(ctx, sub.PlanID); err == nil {
		c.PlanName = plan.Name
	} else {
		h.logger.Warn("plan lookup failed", map[string]interface{}{
			"planId": sub.PlanID,
			"error":  err.Error(),
		})
	}

	return h.deps.Notifier.ConfirmSubscription(ctx, c)
}
