package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/Iam-Iftekhar/animerch/config"
)

// SessionClaims is the signed assertion carried by the access_token cookie.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates session tokens per the configured
// secret, algorithm and lifetime.
type TokenCodec struct {
	secret    []byte
	method    jwt.SigningMethod
	lifetime  time.Duration
	validAlgs []string
}

func NewTokenCodec(cfg config.JwtConfig) *TokenCodec {
	alg := cfg.Algorithm
	if alg == "" {
		alg = "HS256"
	}
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		method = jwt.SigningMethodHS256
		alg = "HS256"
	}
	lifetime := time.Duration(cfg.ExpireMin) * time.Minute
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	return &TokenCodec{
		secret:    []byte(cfg.Secret),
		method:    method,
		lifetime:  lifetime,
		validAlgs: []string{alg},
	}
}

// Issue signs a token asserting {subject: email, role} until expiry.
func (t *TokenCodec) Issue(email, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return signed, nil
}

// Parse validates signature, method and expiry. Some clients store the
// cookie as "Bearer <token>", so an optional scheme prefix is stripped.
func (t *TokenCodec) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if scheme, rest, found := strings.Cut(token, " "); found && strings.EqualFold(scheme, "bearer") {
		token = rest
	}
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods(t.validAlgs))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
