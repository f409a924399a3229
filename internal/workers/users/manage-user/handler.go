// internal/workers/users/manage-user/handler.go
package manageuser

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

const TaskType = "manage-user"

// UserRepository reads and writes registered users.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) (int64, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	config *Config
	users  UserRepository
	tokens auth.Validator
	hash   func(password string) (string, error)
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, users UserRepository, tokens auth.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		users:  users,
		tokens: tokens,
		hash:   auth.HashPassword,
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
	if err := validateInput(input, caller); err != nil {
		return nil, err
	}

	out := &Output{Action: input.Action}
	switch input.Action {
	case ActionList:
		users, err := h.users.List(ctx)
		if err != nil {
			return nil, err
		}
		out.Users = users
		out.Count = len(users)

	case ActionGet:
		u, err := h.users.GetByID(ctx, *input.UserID)
		if err != nil {
			return nil, userError(err, *input.UserID, "")
		}
		out.UserID = u.ID
		out.User = u
		out.Count = 1

	case ActionCreate:
		u, err := h.toModel(input.User)
		if err != nil {
			return nil, err
		}
		id, err := h.users.Create(ctx, u)
		if err != nil {
			return nil, userError(err, 0, input.User.Email)
		}
		u.ID = id
		out.UserID = id
		out.User = u
		out.Count = 1

	case ActionUpdate:
		u, err := h.toModel(input.User)
		if err != nil {
			return nil, err
		}
		u.ID = *input.UserID
		if err := h.users.Update(ctx, u); err != nil {
			return nil, userError(err, u.ID, input.User.Email)
		}
		out.UserID = u.ID
		out.User = u
		out.Count = 1

	case ActionDelete:
		if err := h.users.Delete(ctx, *input.UserID); err != nil {
			return nil, userError(err, *input.UserID, "")
		}
		out.UserID = *input.UserID
	}

	out.Success = true
	h.logger.Info("users managed", map[string]interface{}{
		"action":   input.Action,
		"targetId": out.UserID,
		"count":    out.Count,
		"userId":   caller.UserID,
	})
	return out, nil
}

// toModel hashes the password when one is given. An empty hash leaves the
// stored password untouched on update.
func (h *Handler) toModel(in *UserInput) (*models.User, error) {
	u := &models.User{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		IsAdmin: in.IsAdmin,
	}
	if in.Password == "" {
		return u, nil
	}
	hash, err := h.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	return u, nil
}

func validateInput(input *Input, caller *auth.Identity) error {
	result, err := validation.Validate(input, GetInputSchema())
	if err != nil {
		return apperrors.NewInvalidInputError(err)
	}
	if !result.Valid {
		return apperrors.NewUserValidationFailedError(result.String())
	}

	switch input.Action {
	case ActionGet:
		if input.UserID == nil {
			return apperrors.NewUserValidationFailedError("userId is required for get")
		}
	case ActionCreate:
		if input.User == nil {
			return apperrors.NewUserValidationFailedError("user is required for create")
		}
		if input.User.Password == "" {
			return apperrors.NewUserValidationFailedError("user.password is required for create")
		}
	case ActionUpdate:
		if input.User == nil || input.UserID == nil {
			return apperrors.NewUserValidationFailedError("userId and user are required for update")
		}
		if input.User.ID != 0 && input.User.ID != *input.UserID {
			return apperrors.NewUserValidationFailedError(
				fmt.Sprintf("user id %d does not match userId %d", input.User.ID, *input.UserID))
		}
	case ActionDelete:
		if input.UserID == nil {
			return apperrors.NewUserValidationFailedError("userId is required for delete")
		}
		if *input.UserID == caller.UserID {
			return apperrors.NewUserValidationFailedError("administrators cannot delete themselves")
		}
	}
	return nil
}

func userError(err error, id int64, email string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NewUserNotFoundError(id)
	case errors.Is(err, store.ErrDuplicateEmail):
		return apperrors.NewUserDuplicateError(email)
	case errors.Is(err, store.ErrInUse):
		return apperrors.NewUserValidationFailedError(fmt.Sprintf("user %d still has subscriptions", id))
	}
	return err
}
