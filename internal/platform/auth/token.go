package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "beautydesk"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of a session token. The token ID (jti) is the
// server-side session ID.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	key []byte
	now func() time.Time
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{key: secret, now: time.Now}
}

// Issue signs a token for sess. The token expires with the session.
func (i *TokenIssuer) Issue(sess *Session) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		CompanyID: sess.CompanyID.String(),
		Role:      sess.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.CompanyID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
