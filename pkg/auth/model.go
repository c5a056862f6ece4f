package auth

import (
	"time"

	"educrm-api/pkg/model"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Remember stretches the session to the long-lived expiry.
	Remember bool `json:"remember,omitempty"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Staff     model.Staff `json:"staff"`
}
