package token

import (
	"github.com/syedmusab/rvm-backend/internal/platform/middleware"
)

// ValidatorAdapter exposes the JWT service through the middleware's
// validator interface without leaking jwt types into the middleware.
type ValidatorAdapter struct {
	service *JWTService
}

func NewValidatorAdapter(service *JWTService) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

func (a *ValidatorAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		PhoneNumber: claims.PhoneNumber,
		SessionID:   claims.SessionID,
	}, nil
}
