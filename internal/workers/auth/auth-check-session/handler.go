// internal/workers/auth/auth-check-session/handler.go
package authchecksession

import (
	"context"
	"encoding/json"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/camunda"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "auth-check-session"

// Handler reports who a bearer token belongs to. Revoked and expired
// tokens fail with TOKEN_INVALID.
type Handler struct {
	config *Config
	tokens auth.Validator
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, tokens auth.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
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
	id, err := auth.RequireUser(ctx, h.tokens, input.Token)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("session valid", map[string]interface{}{
		"userId": id.UserID,
		"role":   id.Role,
	})
	return &Output{
		Authenticated: true,
		UserID:        id.UserID,
		Email:         id.Email,
		Role:          id.Role,
		IsAdmin:       id.IsAdmin,
		ExpiresAt:     id.ExpiresAt,
	}, nil
}
