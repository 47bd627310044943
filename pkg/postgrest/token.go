package postgrest

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token body the data service reads its database role from.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner issues short-lived HS256 tokens for a fixed role and reuses a token until it
// is close to expiry.
type TokenSigner struct {
	secret []byte
	role   string
	ttl    time.Duration
	issuer string
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSigner constructs a signer. A non-positive ttl falls back to five minutes.
func NewTokenSigner(secret, role string, ttl time.Duration) (*TokenSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenSigner{
		secret: []byte(secret),
		role:   role,
		ttl:    ttl,
		issuer: "athlete-records-api",
		now:    time.Now,
	}, nil
}

// Token returns a valid signed token.
func (s *TokenSigner) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if s.token != "" && now.Add(s.ttl/5).Before(s.expiresAt) {
		return s.token, nil
	}

	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Role: s.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.token = signed
	s.expiresAt = expiresAt
	return signed, nil
}
