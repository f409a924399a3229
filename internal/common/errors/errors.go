// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes. Every code doubles
// as the BPMN error code thrown to the process.
type ErrorCode string

const (
	ErrCodePlanCatalogEmpty     ErrorCode = "PLAN_CATALOG_EMPTY"
	ErrCodeRecommendationFailed ErrorCode = "RECOMMENDATION_FAILED"
	ErrCodePlanNotFound         ErrorCode = "PLAN_NOT_FOUND"
	ErrCodePlanValidationFailed ErrorCode = "PLAN_VALIDATION_FAILED"

	ErrCodeAccessDenied         ErrorCode = "ACCESS_DENIED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeTokenInvalid         ErrorCode = "TOKEN_INVALID"

	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserDuplicate        ErrorCode = "USER_DUPLICATE"
	ErrCodeUserValidationFailed ErrorCode = "USER_VALIDATION_FAILED"

	ErrCodeSubscriptionDuplicate        ErrorCode = "SUBSCRIPTION_DUPLICATE"
	ErrCodeSubscriptionNotFound         ErrorCode = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeSubscriptionReferenceInvalid ErrorCode = "SUBSCRIPTION_REFERENCE_INVALID"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewPlanCatalogEmptyError is returned when a recommendation is asked for
// against a catalog with no plans.
func NewPlanCatalogEmptyError() *StandardError {
	return newError(ErrCodePlanCatalogEmpty, "no plans available", "", false, nil)
}

// NewRecommendationFailedError wraps a fault raised while ranking plans.
func NewRecommendationFailedError(err error) *StandardError {
	return newError(ErrCodeRecommendationFailed, "recommendation computation failed", err.Error(), false, err)
}

func NewPlanNotFoundError(planID int64) *StandardError {
	return newError(ErrCodePlanNotFound, "plan not found", fmt.Sprintf("planId: %d", planID), false, nil).
		WithMetadata("planId", planID)
}

func NewPlanValidationFailedError(details string) *StandardError {
	return newError(ErrCodePlanValidationFailed, "plan data validation failed", details, false, nil)
}

func NewAccessDeniedError(details string) *StandardError {
	return newError(ErrCodeAccessDenied, "access denied", details, false, nil)
}

func NewAuthenticationFailedError(details string) *StandardError {
	return newError(ErrCodeAuthenticationFailed, "invalid credentials", details, false, nil)
}

func NewTokenInvalidError(err error) *StandardError {
	return newError(ErrCodeTokenInvalid, "invalid or expired token", err.Error(), false, err)
}

func NewUserNotFoundError(userID int64) *StandardError {
	return newError(ErrCodeUserNotFound, "user not found", fmt.Sprintf("userId: %d", userID), false, nil).
		WithMetadata("userId", userID)
}

func NewUserDuplicateError(email string) *StandardError {
	return newError(ErrCodeUserDuplicate, "email already registered", fmt.Sprintf("email: %s", email), false, nil)
}

func NewUserValidationFailedError(details string) *StandardError {
	return newError(ErrCodeUserValidationFailed, "user data validation failed", details, false, nil)
}

func NewSubscriptionDuplicateError(phoneNumber string) *StandardError {
	return newError(ErrCodeSubscriptionDuplicate, "phone number already has a subscription",
		fmt.Sprintf("phoneNumber: %s", phoneNumber), false, nil)
}

func NewSubscriptionNotFoundError(details string) *StandardError {
	return newError(ErrCodeSubscriptionNotFound, "subscription not found", details, false, nil)
}

func NewSubscriptionReferenceInvalidError(details string) *StandardError {
	return newError(ErrCodeSubscriptionReferenceInvalid, "user or plan does not exist", details, false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "database connection error", err.Error(), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "database query timeout", fmt.Sprintf("queryType: %s", queryType), true, nil)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewInvalidInputError(err error) *StandardError {
	return newError(ErrCodeInvalidInput, "job variables could not be parsed", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code. Business
// errors are never retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeQueryTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"timestamp": stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// As finds the first StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the StandardError in err's chain, or
// INTERNAL_ERROR for any other non-nil error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternalError
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID_INPUT"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "PLAN") || strings.HasPrefix(codeStr, "RECOMMENDATION"):
		return "CATALOG"
	case strings.HasPrefix(codeStr, "SUBSCRIPTION"):
		return "SUBSCRIPTION"
	case strings.HasPrefix(codeStr, "USER"):
		return "USER"
	case strings.Contains(codeStr, "ACCESS") || strings.Contains(codeStr, "AUTHENTICATION") || strings.Contains(codeStr, "TOKEN"):
		return "AUTH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
