package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/notification/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/httputil"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

// Service defines the notification operations the transport needs.
type Service interface {
	Record(ctx context.Context, notification *models.BinFullNotification) (*models.BinFullNotification, error)
	List(ctx context.Context, filter models.NotificationFilter, page, pageSize int) (*models.NotificationPage, error)
}

// Handler wires bin-full notification endpoints to the rollup service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a notification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the notification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/notifybinfull", h.HandleRecord)
	r.Get("/getNotification", h.HandleList)
}

// RecordRequest is the HTTP request body for POST /notifybinfull.
type RecordRequest struct {
	BinType    string     `json:"binType"`
	MachineID  string     `json:"machineId"`
	OccurredAt *time.Time `json:"occurredAt"`
}

// Validate validates the bin-full report.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.BinType = strings.TrimSpace(r.BinType)
	if r.BinType == "" {
		return dErrors.New(dErrors.CodeBadRequest, "binType is required")
	}
	return nil
}

// ListResponse is the HTTP response for GET /getNotification.
type ListResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	*models.NotificationPage
}

// HandleRecord handles POST /notifybinfull requests from the machines.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	notification := &models.BinFullNotification{
		BinType:   req.BinType,
		MachineID: strings.TrimSpace(req.MachineID),
	}
	if req.OccurredAt != nil {
		notification.OccurredAt = *req.OccurredAt
	}

	stored, err := h.service.Record(ctx, notification)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bin full reported",
		"request_id", requestID,
		"bin_type", stored.BinType,
		"machine_id", stored.MachineID,
	)
	httputil.WriteJSON(w, http.StatusCreated, stored)
}

// HandleList handles GET /getNotification requests. Query parameters:
// binType, machineId, page (default 1), pageSize.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter := models.NotificationFilter{
		BinType:   r.URL.Query().Get("binType"),
		MachineID: r.URL.Query().Get("machineId"),
	}

	result, err := h.service.List(ctx, filter, page, pageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{
		Message:          "Notifications fetched successfully.",
		Count:            len(result.Notifications),
		NotificationPage: result,
	})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s must be an integer", name)
	}
	return v, nil
}
