package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/service"
)

// AdminHandlers serves the back-office directory: admin accounts, the user
// roster, and per-user KYC records.
type AdminHandlers struct {
	service service.AdminService
}

func NewAdminHandlers(service service.AdminService) *AdminHandlers {
	return &AdminHandlers{service: service}
}

func (h *AdminHandlers) ListSuperAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListSuperAdmins(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteList(w, http.StatusOK, map[string]any{"admins": admins}, len(admins))
}

func (h *AdminHandlers) ListOperators(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListOperators(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteList(w, http.StatusOK, map[string]any{"admins": admins}, len(admins))
}

func (h *AdminHandlers) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"admin": admin})
}

func (h *AdminHandlers) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	admin, err := h.service.UpdateAdmin(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"admin": admin})
}

func (h *AdminHandlers) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAdmin(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteNoContent(w)
}

func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteList(w, http.StatusOK, map[string]any{"users": users}, len(users))
}

func (h *AdminHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AdminHandlers) GetUserKyc(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetUserKyc(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"kyc": record})
}
