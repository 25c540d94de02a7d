// internal/app/system/auth/tokens.go
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token types carried in the "typ" claim so a refresh token can never
// pass for an access token and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default lifetimes, overridable via config.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// tokenClaims is the claim set for both token kinds. The subject is
// the user's ObjectID hex; jti makes every issued token distinct.
type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// TokenService issues and validates the opaque credentials the rest of
// the system exchanges for a Principal. HS256 only; the parser rejects
// every other method.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService builds a TokenService. Zero TTLs fall back to the
// defaults; now may be nil.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}, nil
}

// Issue creates a fresh access/refresh pair for the given user.
func (s *TokenService) Issue(userID primitive.ObjectID) (TokenPair, error) {
	access, err := s.sign(userID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *TokenService) sign(userID primitive.ObjectID, typ string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate checks the token's signature, expiry, and type, and returns
// the user ID it was issued for. Failures surface as Unauthenticated.
func (s *TokenService) Validate(token, wantType string) (primitive.ObjectID, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &tokenClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, apperr.New(apperr.Unauthenticated, "invalid or expired token")
	}
	if claims.TokenType != wantType {
		return primitive.NilObjectID, apperr.New(apperr.Unauthenticated, "wrong token type")
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Unauthenticated, "invalid token subject")
	}
	return userID, nil
}

// HashToken returns the hex SHA-256 digest under which a refresh token
// is stored server-side. SHA-256 rather than bcrypt: a signed JWT is
// high-entropy and longer than bcrypt's 72-byte input limit.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
