package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleMember = "Member"
	RoleAdmin  = "Admin"
)

var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	Username string
	Email    string
}

// Principal is the caller recovered from a verified token.
type Principal struct {
	Username string
	Email    string
	Roles    []string
}

func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

type claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(key, issuer string, ttl time.Duration) (*JWTIssuer, error) {
	// HS512 wants at least a 512-bit key
	if len(key) < 64 {
		return nil, fmt.Errorf("token key must be at least 64 bytes, got %d", len(key))
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWTIssuer{key: []byte(key), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

func (j *JWTIssuer) Issue(id Identity, roles []string) (string, error) {
	now := j.now()
	c := claims{
		Email: id.Email,
		Name:  id.Username,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTIssuer) Verify(token string) (Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return Principal{Username: c.Name, Email: c.Email, Roles: c.Roles}, nil
}
