// internal/workers/subscriptions/create-subscription/handler_test.go
package createsubscription

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/aws"
	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/models"
	"phoneplan-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testSecret = "test-secret-that-is-at-least-32-characters"

var (
	adminUser  = &models.User{ID: 1, Name: "Admin", Email: "admin@example.com", IsAdmin: true}
	normalUser = &models.User{ID: 2, Name: "Ana", Email: "ana@example.com"}
	fixedNow   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

var (
	existsCols = []string{"taken", "user_ok", "plan_ok"}
	userCols   = []string{"id", "name", "email", "phone", "password_hash", "is_admin"}
	planCols   = []string{"id", "name", "cost", "data", "minutes", "sms", "carrier", "extra_benefits"}
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

func newTokenManager(t *testing.T) *auth.TokenManager {
	tm, err := auth.NewTokenManager(config.JWTConfig{
		Secret:   testSecret,
		Issuer:   "phoneplan-workers",
		Audience: "phoneplan-clients",
		TTL:      30,
	}, nil)
	require.NoError(t, err)
	return tm
}

func issueToken(t *testing.T, tm *auth.TokenManager, u *models.User) string {
	token, _, err := tm.Issue(u)
	require.NoError(t, err)
	return token
}

type recordingNotifier struct {
	confirmations []aws.SubscriptionConfirmation
}

func (n *recordingNotifier) ConfirmSubscription(_ context.Context, c aws.SubscriptionConfirmation) []aws.Delivery {
	n.confirmations = append(n.confirmations, c)
	return []aws.Delivery{{Channel: aws.ChannelSMS, Sent: true, MessageID: "msg-1", Reference: "ref-1"}}
}

type fixture struct {
	handler  *Handler
	db       sqlmock.Sqlmock
	tokens   *auth.TokenManager
	notifier *recordingNotifier
}

func newFixture(t *testing.T, withNotifier bool) *fixture {
	db, mock := setupMockDB(t)
	log := logger.NewTestLogger(t)
	tm := newTokenManager(t)
	f := &fixture{db: mock, tokens: tm}

	deps := Dependencies{
		Subscriptions: store.NewSubscriptionStore(db),
		Users:         store.NewUserStore(db),
		Plans:         store.NewPlanStore(db, nil, time.Minute, log),
		Tokens:        tm,
	}
	if withNotifier {
		f.notifier = &recordingNotifier{}
		deps.Notifier = f.notifier
	}

	f.handler = NewHandler(createTestConfig(), deps, log)
	f.handler.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) expectInsert(userID, planID int64, phone string, newID int64) {
	f.db.ExpectBegin()
	f.db.ExpectQuery("SELECT\\s+EXISTS").
		WithArgs(phone, userID, planID).
		WillReturnRows(sqlmock.NewRows(existsCols).AddRow(false, true, true))
	f.db.ExpectQuery("INSERT INTO subscriptions").
		WithArgs(userID, planID, phone, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(newID))
	f.db.ExpectCommit()
}

func int64Ptr(v int64) *int64 {
	return &v
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_SubscribesCaller(t *testing.T) {
	f := newFixture(t, false)
	f.expectInsert(2, 1, "+50588887777", 30)

	out, err := f.handler.Execute(context.Background(), &Input{
		Token:       issueToken(t, f.tokens, normalUser),
		PlanID:      1,
		PhoneNumber: "+50588887777",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(30), out.SubscriptionID)
	assert.Equal(t, int64(2), out.UserID)
	assert.Equal(t, fixedNow, out.SubscribedAt)
	assert.Empty(t, out.Notifications)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestHandler_Execute_SendsConfirmation(t *testing.T) {
	f := newFixture(t, true)
	f.expectInsert(2, 1, "+50588887777", 31)
	f.db.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(2), "Ana", "ana@example.com", "", "hash", false))
	f.db.ExpectQuery("FROM plans WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(planCols).AddRow(int64(1), "Max", 30.0, 50, 1000, 500, "Tigo", nil))

	out, err := f.handler.Execute(context.Background(), &Input{
		Token:       issueToken(t, f.tokens, normalUser),
		PlanID:      1,
		PhoneNumber: "+50588887777",
	})

	require.NoError(t, err)
	require.Len(t, out.Notifications, 1)
	assert.True(t, out.Notifications[0].Sent)
	require.Len(t, f.notifier.confirmations, 1)
	assert.Equal(t, aws.SubscriptionConfirmation{
		SubscriptionID: 31,
		PhoneNumber:    "+50588887777",
		UserName:       "Ana",
		Email:          "ana@example.com",
		PlanName:       "Max",
	}, f.notifier.confirmations[0])
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestHandler_Execute_LookupFailureStillConfirms(t *testing.T) {
	f := newFixture(t, true)
	f.expectInsert(2, 1, "+50588887777", 32)
	f.db.ExpectQuery("FROM users WHERE id = \\$1").WillReturnError(sql.ErrConnDone)
	f.db.ExpectQuery("FROM plans WHERE id = \\$1").WillReturnError(sql.ErrConnDone)

	out, err := f.handler.Execute(context.Background(), &Input{
		Token:       issueToken(t, f.tokens, normalUser),
		PlanID:      1,
		PhoneNumber: "+50588887777",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(32), out.SubscriptionID)
	require.Len(t, f.notifier.confirmations, 1)
	assert.Empty(t, f.notifier.confirmations[0].Email)
}

func TestHandler_Execute_AdminSubscribesOtherUser(t *testing.T) {
	f := newFixture(t, false)
	f.expectInsert(2, 3, "50555512345", 40)

	out, err := f.handler.Execute(context.Background(), &Input{
		Token:       issueToken(t, f.tokens, adminUser),
		PlanID:      3,
		PhoneNumber: "50555512345",
		UserID:      int64Ptr(2),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), out.UserID)
}

func TestHandler_Execute_UserCannotSubscribeOthers(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.handler.Execute(context.Background(), &Input{
		Token:       issueToken(t, f.tokens, normalUser),
		PlanID:      3,
		PhoneNumber: "50555512345",
		UserID:      int64Ptr(9),
	})

	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.CodeOf(err))
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestHandler_Execute_StoreRejections(t *testing.T) {
	tests := []struct {
		name     string
		row      []driver.Value
		wantCode apperrors.ErrorCode
	}{
		{"duplicate phone", []driver.Value{true, true, true}, apperrors.ErrCodeSubscriptionDuplicate},
		{"unknown plan", []driver.Value{false, true, false}, apperrors.ErrCodeSubscriptionReferenceInvalid},
		{"unknown user", []driver.Value{false, false, true}, apperrors.ErrCodeSubscriptionReferenceInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.db.ExpectBegin()
			f.db.ExpectQuery("SELECT\\s+EXISTS").
				WillReturnRows(sqlmock.NewRows(existsCols).AddRow(tt.row...))
			f.db.ExpectRollback()

			_, err := f.handler.Execute(context.Background(), &Input{
				Token:       issueToken(t, f.tokens, normalUser),
				PlanID:      1,
				PhoneNumber: "+50588887777",
			})

			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Empty(t, f.notifier.confirmations)
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"bad phone", Input{PlanID: 1, PhoneNumber: "12-34"}},
		{"short phone", Input{PlanID: 1, PhoneNumber: "123"}},
		{"missing plan", Input{PhoneNumber: "+50588887777"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			in := tt.input
			in.Token = issueToken(t, f.tokens, normalUser)

			_, err := f.handler.Execute(context.Background(), &in)

			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RequiresToken(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.handler.Execute(context.Background(), &Input{PlanID: 1, PhoneNumber: "+50588887777"})
	assert.Equal(t, apperrors.ErrCodeTokenInvalid, apperrors.CodeOf(err))
}
