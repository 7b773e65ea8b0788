// Package identity issues and verifies the bearer tokens that carry a caller's account.
package identity

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// DefaultTTL is how long issued tokens stay valid.
const DefaultTTL = 24 * time.Hour

var (
	ErrMissingConfig = errors.New("identity secret and issuer are required")
	ErrInvalidToken  = errors.New("invalid identity token")
)

type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret, issuer string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an HS256 token whose subject is account.
func (s *Service) Issue(account string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("identity service is nil")
	}
	if account == "" {
		return "", fmt.Errorf("account is required")
	}
	if len(s.secret) == 0 || s.issuer == "" {
		return "", ErrMissingConfig
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": account,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and issuer and returns the account in sub.
func (s *Service) Verify(tokenString string) (string, error) {
	if s == nil || len(s.secret) == 0 || s.issuer == "" {
		return "", ErrMissingConfig
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return "", fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}
