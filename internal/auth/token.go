package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// TokenKind distinguishes short-lived access tokens from refresh tokens.
type TokenKind string

// Token kinds.
const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 3600 * time.Second
	DefaultRefreshTTL = 86400 * time.Second
)

// Token verification errors.
var (
	ErrTokenMalformed   = errors.New("malformed token")
	ErrTokenSignature   = errors.New("invalid token signature")
	ErrTokenInvalidKind = errors.New("invalid token kind")
	ErrTokenExpired     = errors.New("token expired")
)

// Claims is the JWT payload: registered claims plus the token kind.
// exp and iat are whole seconds for other readers; ExpiresAtNano is the
// exact expiry this service checks.
type Claims struct {
	jwt.RegisteredClaims
	Kind          TokenKind `json:"kind"`
	ExpiresAtNano int64     `json:"exp_ns"`
}

// TokenService issues and verifies HS256 session tokens.
// It keeps no state between calls; tokens are not tracked server-side,
// so there is no revocation before expiry.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService. Non-positive TTLs fall back to the defaults.
func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// TTL returns the lifetime of tokens of the given kind, or 0 for an unknown kind.
func (s *TokenService) TTL(kind TokenKind) time.Duration {
	switch kind {
	case KindAccess:
		return s.accessTTL
	case KindRefresh:
		return s.refreshTTL
	default:
		return 0
	}
}

// Issue signs a token for accountID that expires exactly ttl after now.
func (s *TokenService) Issue(accountID int64, kind TokenKind, now time.Time) (string, error) {
	ttl := s.TTL(kind)
	if ttl == 0 {
		return "", fmt.Errorf("issue %q token: %w", kind, ErrTokenInvalidKind)
	}

	expiry := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        ulid.Make().String(),
		},
		Kind:          kind,
		ExpiresAtNano: expiry.UnixNano(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and structure, then that its kind is
// expected, then that now is strictly before its expiry. The kind check runs
// first so a token of the wrong kind is reported as such even after expiry.
func (s *TokenService) Verify(token string, expected TokenKind, now time.Time) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Identity{}, ErrTokenSignature
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return Identity{}, fmt.Errorf("%w: bad subject", ErrTokenMalformed)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil || claims.ExpiresAtNano <= 0 {
		return Identity{}, fmt.Errorf("%w: missing timestamps", ErrTokenMalformed)
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return Identity{}, fmt.Errorf("%w: unknown kind", ErrTokenMalformed)
	}

	if claims.Kind != expected {
		return Identity{}, ErrTokenInvalidKind
	}

	if !now.Before(time.Unix(0, claims.ExpiresAtNano)) {
		return Identity{}, ErrTokenExpired
	}

	return Identity{AccountID: accountID, TokenID: claims.ID}, nil
}

// Refresh verifies a refresh token and, only on success, issues a new access
// token for the same account. The refresh token itself stays valid.
func (s *TokenService) Refresh(refreshToken string, now time.Time) (string, error) {
	identity, err := s.Verify(refreshToken, KindRefresh, now)
	if err != nil {
		return "", err
	}
	return s.Issue(identity.AccountID, KindAccess, now)
}
