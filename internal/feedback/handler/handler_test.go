package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/feedback/service"
	"github.com/syedmusab/rvm-backend/internal/feedback/store"
)

func newFeedbackRouter(t *testing.T) chi.Router {
	t.Helper()

	svc := service.New(store.NewInMemory())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	h.Register(r)
	return r
}

func submitFeedback(t *testing.T, router http.Handler, phone, text string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"phoneNumber": phone, "feedback": text})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateFeedback(t *testing.T) {
	router := newFeedbackRouter(t)

	rec := submitFeedback(t, router, "555", "the cup slot jams")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating feedback, got %d", rec.Code)
	}

	var stored struct {
		ID        string `json:"id"`
		CreatedAt string `json:"createdAt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stored); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if stored.ID == "" || stored.CreatedAt == "" {
		t.Fatalf("expected assigned id and createdAt, got %+v", stored)
	}

	if rec := submitFeedback(t, router, "555", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty feedback, got %d", rec.Code)
	}
	if rec := submitFeedback(t, router, "", "text"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing phone, got %d", rec.Code)
	}
}

func TestListFeedback(t *testing.T) {
	router := newFeedbackRouter(t)

	for _, text := range []string{"first", "second"} {
		if rec := submitFeedback(t, router, "555", text); rec.Code != http.StatusCreated {
			t.Fatalf("seed feedback failed with %d", rec.Code)
		}
	}
	if rec := submitFeedback(t, router, "777", "other user"); rec.Code != http.StatusCreated {
		t.Fatalf("seed feedback failed with %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feedback/555", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing feedback, got %d", rec.Code)
	}

	var resp struct {
		PhoneNumber string `json:"phoneNumber"`
		Feedbacks   []struct {
			Feedback string `json:"feedback"`
		} `json:"feedbacks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if resp.PhoneNumber != "555" {
		t.Fatalf("expected echoed phone number, got %q", resp.PhoneNumber)
	}
	if len(resp.Feedbacks) != 2 {
		t.Fatalf("expected 2 feedback entries, got %d", len(resp.Feedbacks))
	}

	empty := httptest.NewRecorder()
	router.ServeHTTP(empty, httptest.NewRequest(http.MethodGet, "/feedback/000", nil))
	if empty.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown phone, got %d", empty.Code)
	}
	if err := json.NewDecoder(empty.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode empty response: %v", err)
	}
	if len(resp.Feedbacks) != 0 {
		t.Fatalf("expected empty feedback list, got %d entries", len(resp.Feedbacks))
	}
}
