package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/auth/otp"
	"github.com/syedmusab/rvm-backend/internal/auth/token"
)

// captureSender records the last reset email instead of delivering it.
type captureSender struct {
	lastBody string
}

func (s *captureSender) Send(_ context.Context, _, _, body string) error {
	s.lastBody = body
	return nil
}

var codePattern = regexp.MustCompile(`\d{4}`)

func newAuthRouter(t *testing.T) (chi.Router, *captureSender) {
	t.Helper()

	sender := &captureSender{}
	otpSvc := otp.New(otp.NewInMemoryStore(), sender)
	tokens := token.NewJWTService("test-signing-key", "rvm-backend", time.Hour)
	h := New(otpSvc, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	h.Register(r)
	return r, sender
}

func postAuth(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequestOTP(t *testing.T) {
	router, sender := newAuthRouter(t)

	rec := postAuth(t, router, "/auth/request-otp", map[string]string{"email": "user@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 requesting otp, got %d", rec.Code)
	}
	if !codePattern.MatchString(sender.lastBody) {
		t.Fatalf("expected a 4-digit code in the reset email, got %q", sender.lastBody)
	}

	if rec := postAuth(t, router, "/auth/request-otp", map[string]string{"email": "not-an-email"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}

	// A second request inside the cooldown window is refused.
	if rec := postAuth(t, router, "/auth/request-otp", map[string]string{"email": "user@example.com"}); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 during resend cooldown, got %d", rec.Code)
	}
}

func TestVerifyOTP(t *testing.T) {
	router, sender := newAuthRouter(t)

	if rec := postAuth(t, router, "/auth/request-otp", map[string]string{"email": "user@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("otp request failed with %d", rec.Code)
	}
	code := codePattern.FindString(sender.lastBody)
	if code == "" {
		t.Fatalf("no code captured from reset email")
	}

	wrong := postAuth(t, router, "/auth/verify-otp", map[string]string{
		"email":       "user@example.com",
		"otp":         "0000",
		"phoneNumber": "555",
	})
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong code, got %d", wrong.Code)
	}

	rec := postAuth(t, router, "/auth/verify-otp", map[string]string{
		"email":       "user@example.com",
		"otp":         code,
		"phoneNumber": "555",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 verifying otp, got %d", rec.Code)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode verify response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token")
	}

	claims, err := token.NewJWTService("test-signing-key", "rvm-backend", time.Hour).ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}
	if claims.PhoneNumber != "555" {
		t.Fatalf("expected token bound to phone 555, got %q", claims.PhoneNumber)
	}

	// Codes are single use.
	replay := postAuth(t, router, "/auth/verify-otp", map[string]string{
		"email":       "user@example.com",
		"otp":         code,
		"phoneNumber": "555",
	})
	if replay.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 replaying a used code, got %d", replay.Code)
	}
}

func TestVerifyOTPValidation(t *testing.T) {
	router, _ := newAuthRouter(t)

	cases := []map[string]string{
		{"email": "user@example.com", "otp": "1234"},
		{"email": "user@example.com", "phoneNumber": "555"},
		{"email": "nope", "otp": "1234", "phoneNumber": "555"},
	}
	for _, payload := range cases {
		if rec := postAuth(t, router, "/auth/verify-otp", payload); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for payload %v, got %d", payload, rec.Code)
		}
	}
}
