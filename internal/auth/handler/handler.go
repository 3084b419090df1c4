package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/httputil"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

// OTPService issues and verifies password-reset codes.
type OTPService interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// TokenIssuer mints session tokens for verified phone numbers.
type TokenIssuer interface {
	GenerateSessionToken(phoneNumber string) (string, error)
}

// Handler wires the OTP flow to its services.
type Handler struct {
	otp    OTPService
	tokens TokenIssuer
	logger *slog.Logger
}

func New(otp OTPService, tokens TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{otp: otp, tokens: tokens, logger: logger}
}

// Register mounts the OTP endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/request-otp", h.HandleRequestOTP)
	r.Post("/auth/verify-otp", h.HandleVerifyOTP)
}

// RequestOTPRequest is the HTTP request body for POST /auth/request-otp.
type RequestOTPRequest struct {
	Email string `json:"email"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RequestOTPRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "a valid email address is required")
	}
	return nil
}

// VerifyOTPRequest is the HTTP request body for POST /auth/verify-otp. The
// phone number binds the resulting session token to the caller's account.
type VerifyOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	PhoneNumber string `json:"phoneNumber"`
}

// Validate validates the request.
func (r *VerifyOTPRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "a valid email address is required")
	}
	if r.OTP == "" {
		return dErrors.New(dErrors.CodeBadRequest, "otp is required")
	}
	if r.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phoneNumber is required")
	}
	return nil
}

// HandleRequestOTP handles POST /auth/request-otp requests.
func (h *Handler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestOTPRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.otp.Issue(ctx, req.Email); err != nil {
		h.logger.ErrorContext(ctx, "otp issue failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "A reset code has been sent to your email.",
	})
}

// HandleVerifyOTP handles POST /auth/verify-otp requests. A verified code
// yields a session token for the supplied phone number.
func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyOTPRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.otp.Verify(ctx, req.Email, req.OTP); err != nil {
		h.logger.WarnContext(ctx, "otp verification failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.GenerateSessionToken(req.PhoneNumber)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token"))
		return
	}

	h.logger.InfoContext(ctx, "otp verified",
		"request_id", requestID,
		"phone_number", req.PhoneNumber,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Code verified successfully.",
		"token":   token,
	})
}
