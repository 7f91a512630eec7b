package handlers

import (
	"net/http"
	"strings"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/service"
	"github.com/heliohq/claims-portal/pkg/auth"
)

// AdminAuthHandlers serves the back-office account routes.
type AdminAuthHandlers struct {
	service service.AdminService
	cookies auth.CookieOptions
}

func NewAdminAuthHandlers(service service.AdminService, cookies auth.CookieOptions) *AdminAuthHandlers {
	return &AdminAuthHandlers{service: service, cookies: cookies}
}

func (h *AdminAuthHandlers) sendSession(w http.ResponseWriter, statusCode int, admin *domain.Admin, token string) {
	auth.SetSessionCookie(w, token, h.cookies)
	response.WriteSuccess(w, statusCode, map[string]any{"admin": admin})
}

// Signup is gated by the capability key on the Authorization header, not
// by an existing session.
func (h *AdminAuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	presentedKey := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	admin, token, err := h.service.Signup(r.Context(), presentedKey, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusCreated, admin, token)
}

func (h *AdminAuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	admin, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, admin, token)
}

func (h *AdminAuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	response.WriteNoContent(w)
}

func (h *AdminAuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminAuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	admin, token, err := h.service.ResetPassword(r.Context(), r.URL.Query().Get("token"), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, admin, token)
}

func (h *AdminAuthHandlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	claims := ClaimsFrom(r.Context())
	admin, token, err := h.service.ChangePassword(r.Context(), claims.ID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendSession(w, http.StatusOK, admin, token)
}

func (h *AdminAuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	admin, err := h.service.Me(r.Context(), claims.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"admin": admin})
}
