// Package authtoken issues and verifies the signed service-to-service
// tokens the Coordinator attaches to its pattern/technical/trading
// collaborator calls, adapted from the teacher's user-facing JWT issuing in
// services/user-service/internal/service/auth_service.go to a
// service-to-service identity instead of a user identity. It also verifies
// the operator-configured static service key (used by the
// service-to-service routes, teacher's ServiceAuthMiddleware) against its
// bcrypt hash, the way the teacher hashes user passwords.
package authtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// ServiceClaims identifies the calling core component to a collaborator.
type ServiceClaims struct {
	Service string `json:"service"`
	CycleID string `json:"cycle_id,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and parses service-to-service tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a short-lived token identifying service as the caller,
// optionally scoped to a cycle_id for audit correlation.
func (i *Issuer) Issue(service, cycleID string) (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		Service: service,
		CycleID: cycleID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse service token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid service token")
	}
	return claims, nil
}

// HashServiceKey bcrypt-hashes an operator-configured static service key
// for storage, so the key itself never needs to be compared in plaintext.
func HashServiceKey(key string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash service key: %w", err)
	}
	return string(hashed), nil
}

// VerifyServiceKey compares a candidate key against its stored bcrypt hash.
func VerifyServiceKey(hashed, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}
