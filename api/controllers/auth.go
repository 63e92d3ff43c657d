package controllers

import (
	"net/http"
	"strings"

	"github.com/pawfund/pawfund-backend/api/middleware"
	"github.com/pawfund/pawfund-backend/api/responses"
	"github.com/pawfund/pawfund-backend/api/validators"
	"github.com/pawfund/pawfund-backend/internal/auth"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
)

const verificationSentMessage = "Registration successful. Please check your email to verify your account."

// AuthRegister creates a disabled account and emails its verification link.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := reg.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"user":    user,
			"message": verificationSentMessage,
		})
	}
}

// AuthVerify consumes an emailed verification token.
func AuthVerify(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}
		if err := reg.Verify(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Email verified successfully. You can now log in."})
	}
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthResendVerification issues a fresh token for a still-disabled account.
func AuthResendVerification(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}
		var body resendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := reg.ResendVerification(r.Context(), body.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Verification email sent."})
	}
}

// AuthLogin issues tokens and merges the caller's guest cart when the
// X-Guest-Token header is present.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "auth")
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.GuestToken = strings.TrimSpace(r.Header.Get(middleware.GuestTokenHeader))

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
