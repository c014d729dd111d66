package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bankdki/stock-api/api/responses"
	pkgAuth "github.com/bankdki/stock-api/pkg/auth"
	"github.com/bankdki/stock-api/pkg/config"
	"github.com/bankdki/stock-api/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubIdentityResolver struct {
	user *models.User
	err  error
}

func (s stubIdentityResolver) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "stock-api", ExpirationMinutes: 60}
}

func protectedHandler(t *testing.T, wantUsername string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := UsernameFromContext(r.Context()); got != wantUsername {
			t.Fatalf("expected username %q in context got %q", wantUsername, got)
		}
		if UserIDFromContext(r.Context()) == "" {
			t.Fatal("expected user id in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func failedMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env responses.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env.Message
}

func TestAuthAcceptsValidBearerToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), "admin")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	users := stubIdentityResolver{user: &models.User{ID: uuid.New(), Username: "admin"}}
	handler := Auth(cfg, users, nil)(protectedHandler(t, "admin"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(authTestConfig(), stubIdentityResolver{}, nil)(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if got := failedMessage(t, rec); got != "missing credentials" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuthRejectsMalformedToken(t *testing.T) {
	handler := Auth(authTestConfig(), stubIdentityResolver{}, nil)(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if got := failedMessage(t, rec); got != "token malformed" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	cfg := authTestConfig()
	cfg.ExpirationMinutes = 1
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC().Add(-time.Hour), "admin")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	handler := Auth(cfg, stubIdentityResolver{}, nil)(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if got := failedMessage(t, rec); got != "token expired" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuthRejectsUnknownSubject(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), "ghost")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	handler := Auth(cfg, stubIdentityResolver{err: gorm.ErrRecordNotFound}, nil)(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if got := failedMessage(t, rec); got != "invalid token" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuthAcceptsRawTokenWithoutBearerPrefix(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), "admin")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	users := stubIdentityResolver{user: &models.User{ID: uuid.New(), Username: "admin"}}
	handler := Auth(cfg, users, nil)(protectedHandler(t, "admin"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
}
