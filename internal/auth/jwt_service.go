package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"showbiz/internal/model"
)

// DefaultTokenTTL is how long a bearer token stays valid.
const DefaultTokenTTL = 15 * 24 * time.Hour

var (
	errUnexpectedSigningMethod = errors.New("unexpected signing method")
	errInvalidToken            = errors.New("invalid token")

	// ErrTokenRevoked is returned for a token that was logged out.
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims binds a bearer token to one account of one kind.
type Claims struct {
	AccountID uuid.UUID  `json:"id"`
	Kind      model.Kind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the account. Every token carries a unique id so it can
// be revoked on logout.
func (s *JWTService) Issue(accountID uuid.UUID, kind model.Kind) (string, error) {
	now := s.now()
	claims := &Claims{
		AccountID: accountID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        generateTokenID(),
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.AccountID == uuid.Nil || !claims.Kind.Valid() {
		return nil, errInvalidToken
	}

	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.New().String()
}
