// Package auth holds the credential primitives: signed session tokens,
// password hashing and policy, email well-formedness, and token digests.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the account email in Subject. ID is unique per issued token,
// so two tokens issued in the same second for one account still differ.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HS256 session tokens.
type TokenSigner struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenSigner(secret []byte, validity time.Duration) *TokenSigner {
	return &TokenSigner{secret: secret, validity: validity, now: time.Now}
}

// Issue signs a token for subject and returns it with its expiry.
func (s *TokenSigner) Issue(subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Truncate(time.Second), nil
}

// Parse verifies signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func (s *TokenSigner) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
