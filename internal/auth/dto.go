package auth

import (
	"strings"

	"github.com/pawfund/pawfund-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint. Either
// the email or the username identifies the account.
type LoginRequest struct {
	Email      string `json:"email" validate:"required_without=Username"`
	Username   string `json:"username" validate:"required_without=Email"`
	Password   string `json:"password" validate:"required"`
	GuestToken string `json:"-"`
}

// Identifier returns the login handle, preferring the email.
func (r LoginRequest) Identifier() string {
	if v := strings.TrimSpace(r.Email); v != "" {
		return v
	}
	return strings.TrimSpace(r.Username)
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         *users.UserDTO `json:"user"`
	CartMerged   bool           `json:"cartMerged"`
}

// TokenPair is returned by session refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest contains the payload required for self sign-up.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName string  `json:"fullName" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Role     string  `json:"role,omitempty"`
}
