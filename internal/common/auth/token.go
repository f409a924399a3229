// internal/common/auth/token.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phoneplan-workers/internal/common/config"
	"phoneplan-workers/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carried by every issued token. Subject is the user's email and ID
// is a unique token id used for revocation.
type Claims struct {
	UserID  int64  `json:"uid"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller behind a validated token.
type Identity struct {
	UserID    int64
	Email     string
	Role      string
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

// CanAccessUser reports whether the caller may act on userID's data.
func (i *Identity) CanAccessUser(userID int64) bool {
	return i.IsAdmin || i.UserID == userID
}

// Validator validates bearer tokens.
type Validator interface {
	Validate(ctx context.Context, token string) (*Identity, error)
}

// TokenManager issues and validates HS256 tokens. Revoked token ids are kept
// in redis until the token would have expired anyway.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	rdb      redis.Cmdable
	now      func() time.Time
}

// NewTokenManager builds a manager from config. rdb may be nil, in which case
// revocation is disabled.
func NewTokenManager(cfg config.JWTConfig, rdb redis.Cmdable) (*TokenManager, error) {
	if len(cfg.Secret) < config.MinJWTSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", config.MinJWTSecretLength)
	}
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		rdb:      rdb,
		now:      time.Now,
	}, nil
}

// Issue signs a token for user and returns it with its expiry.
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		UserID:  user.ID,
		Role:    user.Role(),
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, expiry, issuer, audience and revocation.
func (m *TokenManager) Validate(ctx context.Context, tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	revoked, err := m.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Subject,
		Role:      claims.Role,
		IsAdmin:   claims.IsAdmin,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the identity's token id until the token expires.
func (m *TokenManager) Revoke(ctx context.Context, id *Identity) error {
	if m.rdb == nil {
		return fmt.Errorf("token revocation requires redis")
	}
	ttl := id.ExpiresAt.Sub(m.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return m.rdb.Set(ctx, revokedKeyPrefix+id.TokenID, "1", ttl).Err()
}

func (m *TokenManager) isRevoked(ctx context.Context, jti string) (bool, error) {
	if m.rdb == nil {
		return false, nil
	}
	n, err := m.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokedKey returns the redis key holding a revoked token id.
func RevokedKey(jti string) string {
	return revokedKeyPrefix + jti
}
