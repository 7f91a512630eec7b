package handlers

import (
	"net/http"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/service"
	"github.com/heliohq/claims-portal/pkg/auth"
)

// AuthHandlers serves the portal-user account routes.
type AuthHandlers struct {
	service service.AuthService
	cookies auth.CookieOptions
}

func NewAuthHandlers(service service.AuthService, cookies auth.CookieOptions) *AuthHandlers {
	return &AuthHandlers{service: service, cookies: cookies}
}

func (h *AuthHandlers) sendSession(w http.ResponseWriter, statusCode int, user *domain.User, token string) {
	auth.SetSessionCookie(w, token, h.cookies)
	response.WriteSuccess(w, statusCode, map[string]any{"user": user})
}

func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, token, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusCreated, user, token)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, user, token)
}

func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	response.WriteNoContent(w)
}

func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteMessage(w, http.StatusOK, "If an account with that email exists, a password reset link has been sent")
}

func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, token, err := h.service.ResetPassword(r.Context(), r.URL.Query().Get("token"), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, user, token)
}

func (h *AuthHandlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	claims := ClaimsFrom(r.Context())
	user, token, err := h.service.ChangePassword(r.Context(), claims.ID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, user, token)
}

func (h *AuthHandlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.service.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, user, token)
}

func (h *AuthHandlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.service.ResendVerification(r.Context(), &req); err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteMessage(w, http.StatusOK, "If an unverified account with that email exists, a verification link has been sent")
}

func (h *AuthHandlers) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	claims := ClaimsFrom(r.Context())
	if err := h.service.UpdateEmail(r.Context(), claims.ID, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteMessage(w, http.StatusOK, "A verification link has been sent to the new email address")
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	user, err := h.service.Me(r.Context(), claims.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"user": user})
}
