package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/httputil"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

// Service defines the ledger operations the transport needs.
type Service interface {
	Record(ctx context.Context, event *models.RecyclingEvent) (*models.RecyclingEvent, error)
	History(ctx context.Context, phone string) ([]models.RecyclingEvent, error)
	Latest(ctx context.Context, phone string) (*models.RecyclingEvent, error)
	AggregateByPhone(ctx context.Context, filter models.EventFilter) ([]models.UserAggregate, error)
	Rank(ctx context.Context, filter models.EventFilter, limit int) ([]models.LeaderboardEntry, error)
	RenameAllSessions(ctx context.Context, phone, userName string) (int64, error)
}

// Handler wires ledger endpoints to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public ledger endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleRecord)
	r.Get("/newgethistory/{phoneNumber}", h.HandleHistory)
	r.Get("/getrecycle/{phoneNumber}", h.HandleLatest)
	r.Get("/registeredusers", h.HandleLeaderboard)
	r.Get("/aggregates", h.HandleAggregates)
}

// RegisterProtected mounts the endpoints that require a session token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/updateUser", h.HandleUpdateUser)
}

// HandleRecord handles POST /users requests from the machines.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.Record(ctx, req.ToEvent())
	if err != nil {
		h.logger.ErrorContext(ctx, "event ingestion failed",
			"request_id", requestID,
			"machine_id", req.MachineID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event recorded",
		"request_id", requestID,
		"event_id", event.ID,
		"machine_id", event.MachineID,
	)
	httputil.WriteJSON(w, http.StatusCreated, event)
}

// HandleHistory handles GET /newgethistory/{phoneNumber} requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phone := chi.URLParam(r, "phoneNumber")

	events, err := h.service.History(ctx, phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(phone, events))
}

// HandleLatest handles GET /getrecycle/{phoneNumber} requests.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phone := chi.URLParam(r, "phoneNumber")

	event, err := h.service.Latest(ctx, phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

// HandleLeaderboard handles GET /registeredusers requests. Optional query
// parameters: limit (0 means everything) and machineId.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter := models.EventFilter{MachineID: r.URL.Query().Get("machineId")}

	entries, err := h.service.Rank(ctx, filter, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard query failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "leaderboard served",
		"request_id", requestID,
		"entries", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, &LeaderboardResponse{
		Message: "Top users fetched successfully.",
		Users:   entries,
	})
}

// HandleAggregates handles GET /aggregates requests.
func (h *Handler) HandleAggregates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := models.EventFilter{MachineID: r.URL.Query().Get("machineId")}

	aggregates, err := h.service.AggregateByPhone(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &AggregatesResponse{Aggregates: aggregates})
}

// HandleUpdateUser handles POST /updateUser requests, the unconditional
// username correction.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	count, err := h.service.RenameAllSessions(ctx, req.PhoneNumber, req.UserName)
	if err != nil {
		h.logger.ErrorContext(ctx, "username correction failed",
			"request_id", requestID,
			"phone_number", req.PhoneNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "username corrected",
		"request_id", requestID,
		"phone_number", req.PhoneNumber,
		"updated_count", count,
	)
	httputil.WriteJSON(w, http.StatusOK, &UpdateUserResponse{
		Message:      "Username updated successfully for all sessions.",
		UpdatedCount: count,
	})
}

// queryInt parses an optional integer query parameter. A non-numeric value
// is a validation error, not a silent default.
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
