// internal/workers/subscriptions/update-subscription/handler_test.go
package updatesubscription

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testSecret = "test-secret-that-is-at-least-32-characters"

var (
	adminUser = &models.User{ID: 1, Name: "Admin", Email: "admin@example.com", IsAdmin: true}
	owner     = &models.User{ID: 2, Name: "Ana", Email: "ana@example.com"}

	updateStmt = regexp.QuoteMeta("UPDATE subscriptions")
)

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
	handler *Handler
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

	return &fixture{
		handler: NewHandler(createTestConfig(), store.NewSubscriptionStore(db), tm, logger.NewTestLogger(t)),
		db:      mock,
		tokens:  tm,
	}
}

func (f *fixture) token(t *testing.T, u *models.User) string {
	token, _, err := f.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func changes() *Changes {
	return &Changes{UserID: 2, PlanID: 3, PhoneNumber: "+50588887777"}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Update(t *testing.T) {
	f := newFixture(t)
	f.db.ExpectExec(updateStmt).
		WithArgs(int64(2), int64(3), "+50588887777", int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := f.handler.Execute(context.Background(), &Input{
		Token:          f.token(t, adminUser),
		SubscriptionID: 6,
		Subscription:   changes(),
	})

	require.NoError(t, err)
	assert.Equal(t, &Output{
		SubscriptionID: 6, UserID: 2, PlanID: 3, PhoneNumber: "+50588887777", Updated: true,
	}, out)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestHandler_Execute_StoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		result   func(*sqlmock.ExpectedExec)
		wantCode apperrors.ErrorCode
	}{
		{"no such subscription", func(e *sqlmock.ExpectedExec) { e.WillReturnResult(sqlmock.NewResult(0, 0)) }, apperrors.ErrCodeSubscriptionNotFound},
		{"phone taken", func(e *sqlmock.ExpectedExec) { e.WillReturnError(&pq.Error{Code: "23505"}) }, apperrors.ErrCodeSubscriptionDuplicate},
		{"unknown plan", func(e *sqlmock.ExpectedExec) { e.WillReturnError(&pq.Error{Code: "23503"}) }, apperrors.ErrCodeSubscriptionReferenceInvalid},
		{"database down", func(e *sqlmock.ExpectedExec) { e.WillReturnError(sql.ErrConnDone) }, apperrors.ErrCodeQueryExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.result(f.db.ExpectExec(updateStmt))

			_, err := f.handler.Execute(context.Background(), &Input{
				Token:          f.token(t, adminUser),
				SubscriptionID: 6,
				Subscription:   changes(),
			})

			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_AdminOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.handler.Execute(context.Background(), &Input{
		Token:          f.token(t, owner),
		SubscriptionID: 6,
		Subscription:   changes(),
	})

	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.CodeOf(err))
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	mismatched := changes()
	mismatched.ID = 7

	tests := []struct {
		name  string
		input *Input
		field string
	}{
		{"missing changes", &Input{SubscriptionID: 6}, "subscription"},
		{"id mismatch", &Input{SubscriptionID: 6, Subscription: mismatched}, "does not match"},
		{"bad phone", &Input{SubscriptionID: 6, Subscription: &Changes{UserID: 2, PlanID: 3, PhoneNumber: "12"}}, "subscription.phoneNumber"},
		{"missing plan", &Input{SubscriptionID: 6, Subscription: &Changes{UserID: 2, PhoneNumber: "+50588887777"}}, "subscription.planId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.input.Token = f.token(t, adminUser)

			_, err := f.handler.Execute(context.Background(), tt.input)

			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.field)
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

var _ SubscriptionUpdater = (*store.SubscriptionStore)(nil)
