// internal/workers/auth/auth-logout/handler_test.go
package authlogout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Output), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

const testSecret = "test-secret-that-is-at-least-32-characters"

var (
	customer = &models.User{ID: 2, Name: "Ana", Email: "ana@example.com"}
	loggedAt = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
)

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "phone-plan-session",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_AuthLogout",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Deadline:                 0,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

func createTestConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       5 * time.Second,
		AuditTTL:      30 * 24 * time.Hour,
	}
}

type fixture struct {
	service *Service
	tokens  *auth.TokenManager
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	tm, err := auth.NewTokenManager(config.JWTConfig{
		Secret:   testSecret,
		Issuer:   "phoneplan-workers",
		Audience: "phoneplan-clients",
		TTL:      30,
	}, rdb)
	require.NoError(t, err)

	svc := NewService(ServiceDependencies{
		Tokens: tm,
		Redis:  rdb,
		Logger: logger.NewTestLogger(t),
	}, createTestConfig())
	svc.now = func() time.Time { return loggedAt }

	return &fixture{service: svc, tokens: tm, redis: mr}
}

func (f *fixture) token(t *testing.T, u *models.User) string {
	token, _, err := f.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute_RevokesToken(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, customer)

	id, err := f.tokens.Validate(context.Background(), token)
	require.NoError(t, err)

	out, err := f.service.Execute(context.Background(), &Input{Token: token, Reason: "user_initiated"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.TokenRevoked)
	assert.Equal(t, loggedAt, out.LogoutAt)

	assert.True(t, f.redis.Exists(auth.RevokedKey(id.TokenID)))
	ttl := f.redis.TTL(auth.RevokedKey(id.TokenID))
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Minute)

	_, err = auth.RequireUser(context.Background(), f.tokens, token)
	assert.Equal(t, apperrors.ErrCodeTokenInvalid, apperrors.CodeOf(err))
}

func TestService_Execute_RecordsLogoutEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Execute(context.Background(), &Input{Token: f.token(t, customer), Reason: "user_initiated"})
	require.NoError(t, err)

	key := LogoutEventKey(customer.ID, loggedAt)
	raw, err := f.redis.Get(key)
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	assert.Equal(t, "ana@example.com", event["email"])
	assert.Equal(t, "user_initiated", event["reason"])
	assert.Equal(t, 30*24*time.Hour, f.redis.TTL(key))
}

func TestService_Execute_AuditDisabled(t *testing.T) {
	f := newFixture(t)
	f.service.config.AuditTTL = 0

	_, err := f.service.Execute(context.Background(), &Input{Token: f.token(t, customer)})
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(LogoutEventKey(customer.ID, loggedAt)))
}

func TestService_Execute_SecondLogoutRejected(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, customer)

	_, err := f.service.Execute(context.Background(), &Input{Token: token})
	require.NoError(t, err)

	_, err = f.service.Execute(context.Background(), &Input{Token: token})
	assert.Equal(t, apperrors.ErrCodeTokenInvalid, apperrors.CodeOf(err))
}

func TestService_Execute_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"too short", "abc"},
		{"garbage", "not-a-jwt-but-long-enough"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.Execute(context.Background(), &Input{Token: tt.token})
			assert.Equal(t, apperrors.ErrCodeTokenInvalid, apperrors.CodeOf(err))
		})
	}
}

func TestService_Execute_RedisDown(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, customer)
	f.redis.Close()

	_, err := f.service.Execute(context.Background(), &Input{Token: token})
	require.Error(t, err)

	code := apperrors.CodeOf(err)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, code)
	assert.True(t, apperrors.IsRetryableErrorCode(code))
}

func TestService_Execute_AuditFailureIgnored(t *testing.T) {
	f := newFixture(t)

	broken := miniredis.RunT(t)
	auditClient := redis.NewClient(&redis.Options{Addr: broken.Addr(), MaxRetries: -1})
	t.Cleanup(func() { auditClient.Close() })
	broken.Close()
	f.service.redis = auditClient

	out, err := f.service.Execute(context.Background(), &Input{Token: f.token(t, customer)})
	require.NoError(t, err)
	assert.True(t, out.TokenRevoked)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute_DelegatesToService(t *testing.T) {
	svc := new(MockService)
	input := &Input{Token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.test"}
	expected := &Output{Success: true, Message: "Logout successful", TokenRevoked: true, LogoutAt: loggedAt}
	svc.On("Execute", mock.Anything, input).Return(expected, nil)

	h := NewHandler(createTestConfig(), svc, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, expected, out)
	svc.AssertExpectations(t)
}

func TestHandler_Execute_PropagatesServiceError(t *testing.T) {
	svc := new(MockService)
	svc.On("Execute", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewTokenInvalidError(auth.ErrTokenRevoked))

	h := NewHandler(createTestConfig(), svc, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{Token: "revoked-token-value"})

	assert.Equal(t, apperrors.ErrCodeTokenInvalid, apperrors.CodeOf(err))
}

func TestHandler_ParseInput(t *testing.T) {
	h := NewHandler(createTestConfig(), new(MockService), logger.NewTestLogger(t))

	t.Run("valid variables", func(t *testing.T) {
		job := createMockJob(1, map[string]interface{}{
			"token":     "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.test",
			"reason":    "user_initiated",
			"sessionId": "ignored-process-variable",
		})
		input, err := h.parseInput(job)
		require.NoError(t, err)
		assert.Equal(t, "user_initiated", input.Reason)
	})

	t.Run("malformed variables", func(t *testing.T) {
		job := createMockJob(2, nil)
		job.Variables = "{not json"
		_, err := h.parseInput(job)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	})
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	cfg := createTestConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.EqualError(t, cfg.Validate(), "timeout must be positive")

	cfg = createTestConfig()
	cfg.AuditTTL = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	app := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 2000},
	}}

	cfg := LoadConfig(app)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 30*24*time.Hour, cfg.AuditTTL)
}
