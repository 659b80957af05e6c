package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionSigner signs session ids into the cookie value so that a tampered or
// forged cookie never reaches the session store.
type SessionSigner struct {
	Secret []byte
	Issuer string
}

func NewSessionSigner(secret, issuer string) *SessionSigner {
	return &SessionSigner{Secret: []byte(secret), Issuer: issuer}
}

type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sign returns a compact HS256 token carrying sid that expires at exp.
func (s *SessionSigner) Sign(sid string, exp time.Time) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// Parse validates the token and returns the session id it carries.
func (s *SessionSigner) Parse(tokenStr string) (string, error) {
	claims := &SessionClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	}, opts...)
	if err != nil {
		return "", errors.Join(ErrInvalidSessionToken, err)
	}
	if !tkn.Valid || claims.SessionID == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.SessionID, nil
}
