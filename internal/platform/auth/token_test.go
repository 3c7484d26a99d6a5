package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only-32b")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey)
	sess := newTestSession(uuid.New(), time.Hour)

	token, err := issuer.Issue(sess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != sess.ID {
		t.Errorf("expected jti %s, got %s", sess.ID, claims.ID)
	}
	if claims.Subject != sess.UserID.String() {
		t.Errorf("expected subject %s, got %s", sess.UserID, claims.Subject)
	}
	if claims.CompanyID != sess.CompanyID.String() || claims.Role != RoleAdmin {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestTokenIssuer_RejectsWrongKey(t *testing.T) {
	sess := newTestSession(uuid.New(), time.Hour)
	token, _ := NewTokenIssuer([]byte("another-secret-key-another-secret")).Issue(sess)

	if _, err := NewTokenIssuer(testSigningKey).Parse(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey)
	sess := newTestSession(uuid.New(), time.Hour)
	token, _ := issuer.Issue(sess)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Parse(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuer_RejectsMalformedClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
	}{
		{"missing jti", Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), Issuer: tokenIssuer},
			CompanyID:        uuid.NewString(),
		}},
		{"bad subject", Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "s1", Subject: "dev-user", Issuer: tokenIssuer},
			CompanyID:        uuid.NewString(),
		}},
		{"bad company", Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "s1", Subject: uuid.NewString(), Issuer: tokenIssuer},
			CompanyID:        "default",
		}},
		{"wrong issuer", Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "s1", Subject: uuid.NewString(), Issuer: "someone-else"},
			CompanyID:        uuid.NewString(),
		}},
	}

	issuer := NewTokenIssuer(testSigningKey)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString(testSigningKey)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := issuer.Parse(token); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenIssuer_RejectsNoneAlg(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "s1", Subject: uuid.NewString(), Issuer: tokenIssuer},
		CompanyID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer(testSigningKey).Parse(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
