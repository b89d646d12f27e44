package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification for any
// reason (bad signature, expiry, malformed claims).
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies the login tokens clients present when
// joining a game as an identified account.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer signing with the given secret.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token carrying the account id and username.
func (i *TokenIssuer) Issue(accountID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      accountID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the account id and
// username the token was issued for.
func (i *TokenIssuer) Verify(tokenString string) (accountID, username string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	accountID, _ = claims["sub"].(string)
	username, _ = claims["username"].(string)
	if accountID == "" {
		return "", "", ErrInvalidToken
	}

	return accountID, username, nil
}
