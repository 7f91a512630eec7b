package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/repository"
)

// crudConfig is one reference entity: its storage shape plus the
// validation and normalization applied to request bodies. All five
// handlers below are generated from it.
type crudConfig struct {
	repository.Resource
	Validate  func(body map[string]any) error
	Transform func(body map[string]any)
}

// labelResource builds the config for a single-label entity such as a
// cost center. The label is trimmed and lower-cased before storage.
func labelResource(name, table, column string) crudConfig {
	return crudConfig{
		Resource: repository.Resource{
			Name:    name,
			Table:   table,
			Columns: []repository.Column{{Name: column, JSON: name}},
		},
		Validate: func(body map[string]any) error {
			return domain.ValidateLabelField(name, body)
		},
		Transform: func(body map[string]any) {
			if value, ok := body[name].(string); ok {
				body[name] = strings.ToLower(strings.TrimSpace(value))
			}
		},
	}
}

func eventResource() crudConfig {
	return crudConfig{
		Resource: repository.Resource{
			Name:  "event",
			Table: "events",
			Columns: []repository.Column{
				{Name: "name", JSON: "name"},
				{Name: "location", JSON: "location"},
				{Name: "date", JSON: "date"},
				{Name: "description", JSON: "description"},
			},
		},
		Validate: domain.ValidateEventBody,
		Transform: func(body map[string]any) {
			for _, field := range []string{"name", "location"} {
				if value, ok := body[field].(string); ok {
					body[field] = strings.TrimSpace(value)
				}
			}
			// Validation already proved the date parses.
			if raw, ok := body["date"].(string); ok {
				if date, err := time.Parse(time.RFC3339, raw); err == nil {
					body["date"] = date
				}
			}
		},
	}
}

// CrudHandlers serves every reference-data entity through one code path.
type CrudHandlers struct {
	repo repository.ReferenceRepository
}

func NewCrudHandlers(repo repository.ReferenceRepository) *CrudHandlers {
	return &CrudHandlers{repo: repo}
}

// MountAdminReferenceRoutes wires the label entities managed from the
// back office.
func (h *CrudHandlers) MountAdminReferenceRoutes(r chi.Router) {
	h.mount(r, "/costCenter", labelResource("costCenter", "cost_centers", "cost_center"))
	h.mount(r, "/accountHead", labelResource("accountHead", "account_heads", "account_head"))
	h.mount(r, "/gstState", labelResource("gstState", "gst_states", "gst_state"))
}

// MountEventRoutes splits reads from writes: any authenticated identity
// can read events, only the writeGuard lets mutations through.
func (h *CrudHandlers) MountEventRoutes(r chi.Router, writeGuard func(http.Handler) http.Handler) {
	cfg := eventResource()
	r.Get("/", h.list(cfg))
	r.Get("/{id}", h.getOne(cfg))
	r.Group(func(r chi.Router) {
		r.Use(writeGuard)
		r.Post("/", h.create(cfg))
		r.Patch("/{id}", h.update(cfg))
		r.Delete("/{id}", h.remove(cfg))
	})
}

func (h *CrudHandlers) mount(r chi.Router, pattern string, cfg crudConfig) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.list(cfg))
		r.Post("/", h.create(cfg))
		r.Get("/{id}", h.getOne(cfg))
		r.Patch("/{id}", h.update(cfg))
		r.Delete("/{id}", h.remove(cfg))
	})
}

func (h *CrudHandlers) list(cfg crudConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.repo.List(r.Context(), cfg.Resource)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteList(w, http.StatusOK, map[string]any{cfg.Name + "s": records}, len(records))
	}
}

func (h *CrudHandlers) getOne(cfg crudConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := h.repo.GetOne(r.Context(), cfg.Resource, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if record == nil {
			response.Error(w, r, response.NotFound("No "+cfg.Name+" found with that ID"))
			return
		}

		response.WriteSuccess(w, http.StatusOK, map[string]any{cfg.Name: record})
	}
}

func (h *CrudHandlers) create(cfg crudConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if err := decodeJSON(r, &body); err != nil {
			response.Error(w, r, err)
			return
		}
		if err := cfg.Validate(body); err != nil {
			response.Error(w, r, response.BadRequest(err.Error()))
			return
		}
		cfg.Transform(body)

		record, err := h.repo.Create(r.Context(), cfg.Resource, body)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteSuccess(w, http.StatusCreated, map[string]any{cfg.Name: record})
	}
}

func (h *CrudHandlers) update(cfg crudConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if err := decodeJSON(r, &body); err != nil {
			response.Error(w, r, err)
			return
		}
		if err := cfg.Validate(body); err != nil {
			response.Error(w, r, response.BadRequest(err.Error()))
			return
		}
		cfg.Transform(body)

		record, err := h.repo.Update(r.Context(), cfg.Resource, chi.URLParam(r, "id"), body)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if record == nil {
			response.Error(w, r, response.NotFound("No "+cfg.Name+" found with that ID"))
			return
		}

		response.WriteSuccess(w, http.StatusOK, map[string]any{cfg.Name: record})
	}
}

func (h *CrudHandlers) remove(cfg crudConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.repo.SoftDelete(r.Context(), cfg.Resource, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if !deleted {
			response.Error(w, r, response.NotFound("No "+cfg.Name+" found with that ID"))
			return
		}

		response.WriteNoContent(w)
	}
}
