package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/httputil"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

// Service defines the feedback operations the transport needs.
type Service interface {
	Create(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]models.Feedback, error)
}

// Handler wires feedback endpoints to the feedback service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the feedback endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/feedback", h.HandleCreate)
	r.Get("/feedback/{phoneNumber}", h.HandleList)
}

// CreateRequest is the HTTP request body for POST /feedback.
type CreateRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Feedback    string `json:"feedback"`
}

// Validate validates the submission.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Feedback = strings.TrimSpace(r.Feedback)
	if r.PhoneNumber == "" || r.Feedback == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phoneNumber and feedback are required")
	}
	return nil
}

// HandleCreate handles POST /feedback requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	stored, err := h.service.Create(ctx, &models.Feedback{
		PhoneNumber: req.PhoneNumber,
		Feedback:    req.Feedback,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, stored)
}

// HandleList handles GET /feedback/{phoneNumber} requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phone := chi.URLParam(r, "phoneNumber")

	out, err := h.service.ListByPhone(ctx, phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"phoneNumber": phone,
		"feedbacks":   out,
	})
}
