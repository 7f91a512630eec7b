package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/service"
	"github.com/heliohq/claims-portal/pkg/auth"
)

// KycHandlers serves KYC submission and the admin-side record update.
type KycHandlers struct {
	service service.KycService
	cookies auth.CookieOptions
}

func NewKycHandlers(service service.KycService, cookies auth.CookieOptions) *KycHandlers {
	return &KycHandlers{service: service, cookies: cookies}
}

// Submit re-issues the session cookie so the KYC-complete flag takes
// effect without a fresh login.
func (h *KycHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.KycRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	claims := ClaimsFrom(r.Context())
	record, user, token, err := h.service.Submit(r.Context(), claims.ID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	auth.SetSessionCookie(w, token, h.cookies)
	response.WriteSuccess(w, http.StatusCreated, map[string]any{"kyc": record, "user": user})
}

func (h *KycHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.KycRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	record, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"kyc": record})
}
