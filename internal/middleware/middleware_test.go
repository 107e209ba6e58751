package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"steptree/internal/domain/models"
	"steptree/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenVerifier accepts exactly one token
type tokenVerifier struct {
	token string
}

func (v *tokenVerifier) VerifyToken(token string) (*models.Claims, error) {
	if token != v.token {
		return nil, errors.New("invalid")
	}
	return &models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}, nil
}

func (v *tokenVerifier) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httputil.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(&tokenVerifier{token: "good"}, "/health")(next)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", http.MethodGet, "/api/tree", "Bearer good", http.StatusNoContent, "user-1"},
		{"missing header", http.MethodGet, "/api/tree", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodGet, "/api/tree", "Basic good", http.StatusUnauthorized, ""},
		{"empty bearer", http.MethodGet, "/api/tree", "Bearer ", http.StatusUnauthorized, ""},
		{"invalid token", http.MethodGet, "/api/tree", "Bearer bad", http.StatusUnauthorized, ""},
		{"public path", http.MethodGet, "/health", "", http.StatusNoContent, ""},
		{"preflight", http.MethodOptions, "/api/tree", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r)
		httputil.RespondError(w, http.StatusNotFound, "missing")
	})
	h := RequestID(discardLogger())(next)

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		id := rec.Header().Get(httputil.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("response id %q is not a UUID", id)
		}
		if seen != id {
			t.Errorf("context id = %q, want %q", seen, id)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("reused", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(httputil.RequestIDHeader, incoming)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(httputil.RequestIDHeader); got != incoming {
			t.Errorf("id = %q, want %q", got, incoming)
		}
	})

	t.Run("invalid incoming replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(httputil.RequestIDHeader, "<script>")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(httputil.RequestIDHeader); got == "<script>" {
			t.Error("invalid incoming id was echoed back")
		}
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("ServeHTTP returned without panicking")
}

func TestRequireScope(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireScope(models.ScopeTreeRefresh)(next)

	tests := []struct {
		name       string
		claims     *models.Claims
		wantStatus int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"scope granted", &models.Claims{Scope: "openid steptree:refresh"}, http.StatusNoContent},
		{"scope missing", &models.Claims{Scope: "openid"}, http.StatusForbidden},
		{"admin role", &models.Claims{Role: "admin"}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tree/refresh", nil)
			if tt.claims != nil {
				req = httputil.WithClaims(req, tt.claims)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
