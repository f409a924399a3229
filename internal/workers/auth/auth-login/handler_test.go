// internal/workers/auth/auth-login/handler_test.go
package authlogin

import (
	"context"
	"database/sql"
	"regexp"
	"sync"
	"testing"
	"time"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	testSecret   = "test-secret-that-is-at-least-32-characters"
	testPassword = "correct horse battery staple"
)

var (
	userCols    = []string{"id", "name", "email", "phone", "password_hash", "is_admin"}
	userByEmail = regexp.QuoteMeta(`SELECT id, name, email, phone, password_hash, is_admin FROM users WHERE lower(email) = $1`)

	hashOnce   sync.Once
	storedHash string
)

func passwordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := auth.HashPassword(testPassword)
		require.NoError(t, err)
		storedHash = h
	})
	return storedHash
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func createTestConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second}
}

type fixture struct {
	service *Service
	db      sqlmock.Sqlmock
	tokens  *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	db, mock := setupMockDB(t)
	tm, err := auth.NewTokenManager(config.JWTConfig{
		Secret:   testSecret,
		Issuer:   "phoneplan-workers",
		Audience: "phoneplan-clients",
		TTL:      30,
	}, nil)
	require.NoError(t, err)

	svc := NewService(ServiceDependencies{
		Users:  store.NewUserStore(db),
		Tokens: tm,
		Logger: logger.NewTestLogger(t),
	}, createTestConfig())

	return &fixture{service: svc, db: mock, tokens: tm}
}

func (f *fixture) expectUser(t *testing.T, email string, isAdmin bool) {
	f.db.ExpectQuery(userByEmail).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(7), "Ana", email, "5551234567", passwordHash(t), isAdmin))
}

type failingIssuer struct{}

func (failingIssuer) Issue(*models.User) (string, time.Time, error) {
	return "", time.Time{}, assert.AnError
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute_Success(t *testing.T) {
	tests := []struct {
		name     string
		isAdmin  bool
		wantRole string
	}{
		{"customer", false, models.RoleUser},
		{"administrator", true, models.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectUser(t, "ana@example.com", tt.isAdmin)

			out, err := f.service.Execute(context.Background(), &Input{
				Email:    "Ana@Example.com",
				Password: testPassword,
			})
			require.NoError(t, err)

			assert.Equal(t, "Bearer", out.TokenType)
			assert.Equal(t, tt.wantRole, out.Role)
			assert.Equal(t, int64(7), out.UserID)
			assert.WithinDuration(t, time.Now().Add(30*time.Minute), out.ExpiresAt, time.Minute)

			id, err := f.tokens.Validate(context.Background(), out.Token)
			require.NoError(t, err)
			assert.Equal(t, "ana@example.com", id.Email)
			assert.Equal(t, tt.isAdmin, id.IsAdmin)
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

func TestService_Execute_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.expectUser(t, "ana@example.com", false)

	_, err := f.service.Execute(context.Background(), &Input{Email: "ana@example.com", Password: "guess"})
	assert.Equal(t, apperrors.ErrCodeAuthenticationFailed, apperrors.CodeOf(err))
}

func TestService_Execute_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	f.db.ExpectQuery(userByEmail).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := f.service.Execute(context.Background(), &Input{Email: "nobody@example.com", Password: testPassword})
	assert.Equal(t, apperrors.ErrCodeAuthenticationFailed, apperrors.CodeOf(err))
}

func TestService_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"missing email", &Input{Password: testPassword}},
		{"malformed email", &Input{Email: "not-an-email", Password: testPassword}},
		{"empty password", &Input{Email: "ana@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.Execute(context.Background(), tt.input)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

func TestService_Execute_QueryFailure(t *testing.T) {
	f := newFixture(t)
	f.db.ExpectQuery(userByEmail).
		WithArgs("ana@example.com").
		WillReturnError(sql.ErrConnDone)

	_, err := f.service.Execute(context.Background(), &Input{Email: "ana@example.com", Password: testPassword})

	code := apperrors.CodeOf(err)
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, code)
	assert.True(t, apperrors.IsRetryableErrorCode(code))
}

func TestService_Execute_IssueFailure(t *testing.T) {
	f := newFixture(t)
	f.service.tokens = failingIssuer{}
	f.expectUser(t, "ana@example.com", false)

	_, err := f.service.Execute(context.Background(), &Input{Email: "ana@example.com", Password: testPassword})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, apperrors.ErrCodeInternalError, apperrors.CodeOf(err))
}

// ==========================
// Handler Tests
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

func TestHandler_Execute_DelegatesToService(t *testing.T) {
	svc := new(MockService)
	input := &Input{Email: "ana@example.com", Password: testPassword}
	expected := &Output{Token: "signed", TokenType: "Bearer", Role: models.RoleUser, UserID: 7}
	svc.On("Execute", mock.Anything, input).Return(expected, nil)

	h := NewHandler(createTestConfig(), svc, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, expected, out)
	svc.AssertExpectations(t)
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	cfg := createTestConfig()
	assert.NoError(t, cfg.Validate())

	cfg.MaxJobsActive = 0
	assert.EqualError(t, cfg.Validate(), "max_jobs_active must be positive")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(&config.Config{})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.MaxJobsActive)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
