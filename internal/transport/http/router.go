// Package httptransport assembles the HTTP surface: middleware stack,
// domain handler mounts, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "github.com/syedmusab/rvm-backend/internal/auth/handler"
	feedbackhandler "github.com/syedmusab/rvm-backend/internal/feedback/handler"
	ledgerhandler "github.com/syedmusab/rvm-backend/internal/ledger/handler"
	notificationhandler "github.com/syedmusab/rvm-backend/internal/notification/handler"
	"github.com/syedmusab/rvm-backend/internal/platform/metrics"
	"github.com/syedmusab/rvm-backend/internal/platform/middleware"
	profilehandler "github.com/syedmusab/rvm-backend/internal/profile/handler"
	"github.com/syedmusab/rvm-backend/pkg/deeplink"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router mounts. Nil optional fields disable
// their endpoints.
type Deps struct {
	Ledger       ledgerhandler.Service
	Profiles     profilehandler.Service
	Notification notificationhandler.Service
	Feedback     feedbackhandler.Service
	OTP          authhandler.OTPService
	Tokens       authhandler.TokenIssuer
	Validator    middleware.JWTValidator
	DeepLinks    *deeplink.Generator

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewRouter builds the full chi router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	ledgerH := ledgerhandler.New(deps.Ledger, deps.Logger)
	profileH := profilehandler.New(deps.Profiles, deps.Logger)
	notificationH := notificationhandler.New(deps.Notification, deps.Logger)
	feedbackH := feedbackhandler.New(deps.Feedback, deps.Logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		ledgerH.Register(r)
		profileH.Register(r)
		notificationH.Register(r)
		feedbackH.Register(r)

		if deps.OTP != nil && deps.Tokens != nil {
			authhandler.New(deps.OTP, deps.Tokens, deps.Logger).Register(r)
		}

		if deps.DeepLinks != nil {
			r.Get("/vouch365/{username}/{phoneNumber}", handleDeepLink(deps.DeepLinks))
		}
	})

	// Mutating user-facing routes sit behind the session token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))

		ledgerH.RegisterProtected(r)
		profileH.RegisterProtected(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeepLink handles GET /vouch365/{username}/{phoneNumber} requests,
// returning the encrypted partner splash URL.
func handleDeepLink(generator *deeplink.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		phone := chi.URLParam(r, "phoneNumber")
		if username == "" || phone == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "username and phone number are required"))
			return
		}

		url, err := generator.Generate(username, phone)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate deep link"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}
