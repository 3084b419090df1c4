package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/syedmusab/rvm-backend/internal/auth/token"
	feedbackservice "github.com/syedmusab/rvm-backend/internal/feedback/service"
	feedbackstore "github.com/syedmusab/rvm-backend/internal/feedback/store"
	ledgerservice "github.com/syedmusab/rvm-backend/internal/ledger/service"
	ledgerstore "github.com/syedmusab/rvm-backend/internal/ledger/store"
	notificationservice "github.com/syedmusab/rvm-backend/internal/notification/service"
	notificationstore "github.com/syedmusab/rvm-backend/internal/notification/store"
	profileservice "github.com/syedmusab/rvm-backend/internal/profile/service"
	profilestore "github.com/syedmusab/rvm-backend/internal/profile/store"
)

func newTestRouter(t *testing.T) (http.Handler, *token.JWTService) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	profiles := profilestore.NewInMemory()
	ledgerSvc := ledgerservice.New(ledgerstore.NewInMemory(), profileservice.NewDirectory(profiles))
	tokens := token.NewJWTService("test-key", "rvm-backend", time.Hour)

	router := NewRouter(Deps{
		Ledger:       ledgerSvc,
		Profiles:     profileservice.New(profiles, ledgerSvc),
		Notification: notificationservice.New(notificationstore.NewInMemory()),
		Feedback:     feedbackservice.New(feedbackstore.NewInMemory()),
		Validator:    token.NewValidatorAdapter(tokens),
		Logger:       log,
	})
	return router, tokens
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, tokens := newTestRouter(t)

	body := `{"phoneNumber":"555","userName":"Ana"}`
	req := httptest.NewRequest(http.MethodPost, "/updateUser", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	sessionToken, err := tokens.GenerateSessionToken("555")
	if err != nil {
		t.Fatalf("failed to mint session token: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/updateUser", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	bad := httptest.NewRequest(http.MethodPost, "/updateUser", strings.NewReader(body))
	bad.Header.Set("Content-Type", "application/json")
	bad.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bad)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", rec.Code)
	}
}

func TestPublicRoutesMounted(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{
		"/registeredusers",
		"/getNotification",
		"/feedback/555",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from %s, got %d", path, rec.Code)
		}
	}
}
