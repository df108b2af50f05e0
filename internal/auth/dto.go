package auth

import (
	"time"

	"github.com/angelmondragon/quotedesk-backend/internal/users"
	"github.com/angelmondragon/quotedesk-backend/pkg/auth/session"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email        string  `json:"email" validate:"required,email,max=255"`
	Password     string  `json:"password" validate:"required,min=8,max=128"`
	Name         string  `json:"name" validate:"required,max=255"`
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *users.UserDTO `json:"user"`
}

// ClientInfo is forwarded to the session store for auditing.
type ClientInfo = session.Metadata
