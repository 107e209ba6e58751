package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"steptree/internal/domain"
	"steptree/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T) (*JWKSVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	kf := func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newVerifierWithKeyfunc(kf, logger), key
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestJWKSVerifier_VerifyToken(t *testing.T) {
	verifier, key := newTestVerifier(t)
	otherKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	valid := func() *models.Claims {
		return &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email: "user@example.com",
		}
	}

	tests := []struct {
		name    string
		token   func() string
		wantErr bool
	}{
		{
			name:  "valid",
			token: func() string { return sign(t, jwt.SigningMethodRS256, key, valid()) },
		},
		{
			name: "expired",
			token: func() string {
				c := valid()
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				return sign(t, jwt.SigningMethodRS256, key, c)
			},
			wantErr: true,
		},
		{
			name: "no expiry",
			token: func() string {
				c := valid()
				c.ExpiresAt = nil
				return sign(t, jwt.SigningMethodRS256, key, c)
			},
			wantErr: true,
		},
		{
			name: "no subject",
			token: func() string {
				c := valid()
				c.Subject = ""
				return sign(t, jwt.SigningMethodRS256, key, c)
			},
			wantErr: true,
		},
		{
			name:    "wrong key",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, otherKey, valid()) },
			wantErr: true,
		},
		{
			name:    "hmac rejected",
			token:   func() string { return sign(t, jwt.SigningMethodHS256, []byte("secret"), valid()) },
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func() string { return "not.a.token" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token())
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Errorf("VerifyToken() error = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken() error = %v", err)
			}
			if claims.GetUserID() != "user-1" || claims.Email != "user@example.com" {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestNewJWTVerifier_EmptyURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewJWTVerifier("", logger); err == nil {
		t.Error("NewJWTVerifier(\"\") error = nil")
	}
}
