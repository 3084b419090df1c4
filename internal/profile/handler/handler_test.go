package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/profile/service"
	"github.com/syedmusab/rvm-backend/internal/profile/store"
)

// failingReconciler simulates a ledger outage during backfill.
type failingReconciler struct{}

func (failingReconciler) ReconcileUsername(_ context.Context, _, _ string) (int64, error) {
	return 0, errors.New("ledger down")
}

func (failingReconciler) RenameAllSessions(_ context.Context, _, _ string) (int64, error) {
	return 0, errors.New("ledger down")
}

func newProfileRouter(t *testing.T, reconciler service.LedgerReconciler) chi.Router {
	t.Helper()

	svc := service.New(store.NewInMemory(), reconciler)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterProtected(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterProfile(t *testing.T) {
	router := newProfileRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/register", map[string]any{
		"phoneNumber": "555",
		"username":    "Ana",
		"age":         30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering, got %d", rec.Code)
	}

	var resp struct {
		User struct {
			PhoneNumber string `json:"phoneNumber"`
			Gender      string `json:"gender"`
			ProfilePic  string `json:"profilePic"`
		} `json:"user"`
		Warning string `json:"warning"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if resp.User.Gender != "unspecified" {
		t.Fatalf("expected default gender, got %q", resp.User.Gender)
	}
	if resp.User.ProfilePic == "" {
		t.Fatalf("expected default profile pic")
	}
	if resp.Warning != "" {
		t.Fatalf("expected no warning, got %q", resp.Warning)
	}

	dup := doJSON(t, router, http.MethodPost, "/register", map[string]any{
		"phoneNumber": "555",
		"username":    "Other",
	})
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate phone, got %d", dup.Code)
	}

	missing := doJSON(t, router, http.MethodPost, "/register", map[string]any{"username": "NoPhone"})
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing phone, got %d", missing.Code)
	}
}

func TestRegisterProfilePartialSuccess(t *testing.T) {
	router := newProfileRouter(t, failingReconciler{})

	rec := doJSON(t, router, http.MethodPost, "/register", map[string]any{
		"phoneNumber": "555",
		"username":    "Ana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite backfill failure, got %d", rec.Code)
	}

	var resp struct {
		Warning string `json:"warning"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if resp.Warning == "" {
		t.Fatalf("expected warning on partial success")
	}
}

func TestUpdateProfile(t *testing.T) {
	router := newProfileRouter(t, nil)

	if rec := doJSON(t, router, http.MethodPost, "/register", map[string]any{
		"phoneNumber": "555",
		"username":    "Ana",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed registration failed with %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPut, "/update-profile/555", map[string]any{"age": 31})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating profile, got %d", rec.Code)
	}

	var resp struct {
		User struct {
			UserName string `json:"username"`
			Age      *int   `json:"age"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if resp.User.UserName != "Ana" {
		t.Fatalf("expected untouched username, got %q", resp.User.UserName)
	}
	if resp.User.Age == nil || *resp.User.Age != 31 {
		t.Fatalf("expected age 31")
	}

	missing := doJSON(t, router, http.MethodPut, "/update-profile/000", map[string]any{"age": 31})
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown phone, got %d", missing.Code)
	}

	empty := doJSON(t, router, http.MethodPut, "/update-profile/555", map[string]any{})
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", empty.Code)
	}
}

func TestGetAndVerifiedRegister(t *testing.T) {
	router := newProfileRouter(t, nil)

	if rec := doJSON(t, router, http.MethodPost, "/register", map[string]any{
		"phoneNumber": "555",
		"username":    "Ana",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed registration failed with %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/getuser/555", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching profile, got %d", rec.Code)
	}

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/getuser/000", nil))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown profile, got %d", missing.Code)
	}

	verified := httptest.NewRecorder()
	router.ServeHTTP(verified, httptest.NewRequest(http.MethodGet, "/verifiedregister/555", nil))
	if verified.Code != http.StatusOK {
		t.Fatalf("expected 200 for registered phone, got %d", verified.Code)
	}

	unverified := httptest.NewRecorder()
	router.ServeHTTP(unverified, httptest.NewRequest(http.MethodGet, "/verifiedregister/000", nil))
	if unverified.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unregistered phone, got %d", unverified.Code)
	}
}
