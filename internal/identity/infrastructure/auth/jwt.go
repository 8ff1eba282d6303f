package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/quorum/internal/identity/application/commands"
	"github.com/felixgeelhaar/quorum/pkg/clock"
)

// ErrBadToken is returned for any token that fails verification.
var ErrBadToken = errors.New("invalid token")

const issuer = "quorum"

// Claims are the JWT claims carried by an identity token.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 identity tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewJWTIssuer creates an issuer.
func NewJWTIssuer(secret string, ttl time.Duration, clk clock.Clock) *JWTIssuer {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Issue signs a token for userID.
func (j *JWTIssuer) Issue(userID uuid.UUID) (commands.IssuedToken, error) {
	now := j.clock.Now()
	expiresAt := now.Add(j.ttl)

	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return commands.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return commands.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry of raw and returns the user id it names.
func (j *JWTIssuer) Verify(raw string) (uuid.UUID, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return j.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		return uuid.Nil, errors.Join(ErrBadToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return uuid.Nil, ErrBadToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, errors.Join(ErrBadToken, err)
	}
	return userID, nil
}
