package auth

import (
	"context"
	"testing"
	"time"

	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testSecret = "0123456789abcdef0123456789abcdef"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   testSecret,
		Issuer:   "phoneplan-workers",
		Audience: "phoneplan-clients",
		TTL:      30,
	}
}

func setupManager(t *testing.T) (*TokenManager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	m, err := NewTokenManager(testJWTConfig(), redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	return m, mr
}

func adminUser() *models.User {
	return &models.User{ID: 1, Name: "Ana", Email: "ana@example.com", IsAdmin: true}
}

func regularUser() *models.User {
	return &models.User{ID: 2, Name: "Luis", Email: "luis@example.com"}
}

// ==========================
// TokenManager
// ==========================

func TestNewTokenManager_RejectsShortSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = "too-short"

	_, err := NewTokenManager(cfg, nil)
	assert.Error(t, err)
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m, _ := setupManager(t)

	token, expiresAt, err := m.Issue(adminUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	id, err := m.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.Equal(t, models.RoleAdmin, id.Role)
	assert.True(t, id.IsAdmin)
	assert.NotEmpty(t, id.TokenID)
}

func TestTokenManager_UniqueTokenIDs(t *testing.T) {
	m, _ := setupManager(t)

	a, _, err := m.Issue(regularUser())
	require.NoError(t, err)
	b, _, err := m.Issue(regularUser())
	require.NoError(t, err)

	idA, err := m.Validate(context.Background(), a)
	require.NoError(t, err)
	idB, err := m.Validate(context.Background(), b)
	require.NoError(t, err)
	assert.NotEqual(t, idA.TokenID, idB.TokenID)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m, _ := setupManager(t)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := m.Issue(regularUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	m, _ := setupManager(t)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "ffffffffffffffffffffffffffffffff"
	other, err := NewTokenManager(otherCfg, nil)
	require.NoError(t, err)
	forged, _, err := other.Issue(adminUser())
	require.NoError(t, err)

	wrongAudCfg := testJWTConfig()
	wrongAudCfg.Audience = "someone-else"
	wrongAud, err := NewTokenManager(wrongAudCfg, nil)
	require.NoError(t, err)
	misaddressed, _, err := wrongAud.Issue(adminUser())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret":   forged,
		"wrong audience": misaddressed,
		"alg none":       unsigned,
		"garbage":        "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(context.Background(), token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestTokenManager_Revoke(t *testing.T) {
	m, mr := setupManager(t)
	ctx := context.Background()

	token, _, err := m.Issue(regularUser())
	require.NoError(t, err)
	id, err := m.Validate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, id))

	assert.True(t, mr.Exists(RevokedKey(id.TokenID)))
	ttl := mr.TTL(RevokedKey(id.TokenID))
	assert.True(t, ttl > 29*time.Minute && ttl <= 30*time.Minute, "ttl %s", ttl)

	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

// ==========================
// Authorization predicates
// ==========================

func TestRequireAdmin(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	adminToken, _, err := m.Issue(adminUser())
	require.NoError(t, err)
	userToken, _, err := m.Issue(regularUser())
	require.NoError(t, err)

	id, err := RequireAdmin(ctx, m, adminToken)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)

	_, err = RequireAdmin(ctx, m, userToken)
	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.CodeOf(err))

	_, err = RequireAdmin(ctx, m, "")
	assert.Equal(t, apperrors.ErrCodeTokenInvalid, apperrors.CodeOf(err))
}

func TestRequireUser_RedisDownIsRetryable(t *testing.T) {
	m, mr := setupManager(t)
	token, _, err := m.Issue(regularUser())
	require.NoError(t, err)

	mr.Close()

	_, err = RequireUser(context.Background(), m, token)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, apperrors.CodeOf(err))
}

func TestIdentity_CanAccessUser(t *testing.T) {
	owner := &Identity{UserID: 2}
	admin := &Identity{UserID: 1, IsAdmin: true}

	assert.True(t, owner.CanAccessUser(2))
	assert.False(t, owner.CanAccessUser(3))
	assert.True(t, admin.CanAccessUser(3))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}
