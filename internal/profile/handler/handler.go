package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/httputil"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

// Service defines the profile operations the transport needs.
type Service interface {
	Register(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
	Update(ctx context.Context, phoneNumber string, update models.ProfileUpdate) (*models.UserProfile, error)
	Get(ctx context.Context, phoneNumber string) (*models.UserProfile, error)
	Exists(ctx context.Context, phoneNumber string) (bool, error)
}

// Handler wires profile endpoints to the profile service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a profile handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public profile endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Get("/getuser/{phoneNumber}", h.HandleGet)
	r.Get("/verifiedregister/{phoneNumber}", h.HandleVerifiedRegister)
}

// RegisterProtected mounts the endpoints that require a session token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Put("/update-profile/{phoneNumber}", h.HandleUpdate)
}

// profileResponse wraps a profile with an optional warning for
// partial-success outcomes.
type profileResponse struct {
	Message string              `json:"message"`
	User    *models.UserProfile `json:"user"`
	Warning string              `json:"warning,omitempty"`
}

// HandleRegister handles POST /register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Register(ctx, req.ToProfile())
	if err != nil && !dErrors.HasCode(err, dErrors.CodePartial) {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"phone_number", req.PhoneNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := &profileResponse{Message: "User registered successfully", User: profile}
	if err != nil {
		// Partial success: the profile is saved but the ledger backfill
		// did not run. The client still gets a 201.
		resp.Warning = dErrors.MessageOf(err)
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"phone_number", profile.PhoneNumber,
		"partial", resp.Warning != "",
	)
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// HandleUpdate handles PUT /update-profile/{phoneNumber} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	phone := chi.URLParam(r, "phoneNumber")

	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Update(ctx, phone, req.ToUpdate())
	if err != nil && !dErrors.HasCode(err, dErrors.CodePartial) {
		httputil.WriteError(w, err)
		return
	}

	resp := &profileResponse{Message: "Profile updated successfully", User: profile}
	if err != nil {
		resp.Warning = dErrors.MessageOf(err)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /getuser/{phoneNumber} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phone := chi.URLParam(r, "phoneNumber")

	profile, err := h.service.Get(ctx, phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// HandleVerifiedRegister handles GET /verifiedregister/{phoneNumber}
// requests, the bare existence check the machines use.
func (h *Handler) HandleVerifiedRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phone := chi.URLParam(r, "phoneNumber")

	exists, err := h.service.Exists(ctx, phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !exists {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"registered": true})
}
