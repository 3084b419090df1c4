package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// JWTValidator defines the interface for validating session tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	PhoneNumber string
	SessionID   string
}

type contextKeyPhoneNumber struct{}

// GetPhoneNumber retrieves the authenticated phone number from the context.
func GetPhoneNumber(ctx context.Context) string {
	phone, ok := ctx.Value(contextKeyPhoneNumber{}).(string)
	if !ok {
		return ""
	}
	return phone
}

// WithPhoneNumber injects an authenticated phone number into a context.
// Useful for handler tests that don't run the full middleware chain.
func WithPhoneNumber(ctx context.Context, phone string) context.Context {
	return context.WithValue(ctx, contextKeyPhoneNumber{}, phone)
}

// RequireAuth validates the Authorization bearer token and stores the
// authenticated phone number in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(stripBearer(header))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := WithPhoneNumber(r.Context(), claims.PhoneNumber)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
