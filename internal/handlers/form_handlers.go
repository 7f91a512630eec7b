package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/service"
)

// FormHandlers serves claim-form creation and lookup.
type FormHandlers struct {
	service service.FormService
}

func NewFormHandlers(service service.FormService) *FormHandlers {
	return &FormHandlers{service: service}
}

func (h *FormHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFormRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	claims := ClaimsFrom(r.Context())
	form, formClaims, err := h.service.Create(r.Context(), claims.ID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, map[string]any{"form": form, "claims": formClaims})
}

func (h *FormHandlers) Get(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	form, formClaims, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), claims.ID, claims.Role)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]any{"form": form, "claims": formClaims})
}
