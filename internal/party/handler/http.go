// Package handler serves the customer and vendor list endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/party/service"
	"smallbiz-erp/backend/internal/platform/httpx"
)

type Handler struct {
	svc  *service.Service
	base string
}

// NewHandler serves svc's parties under /customers or /vendors.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc, base: "/" + svc.Kind().Table()}
}

// Routes registers list, create and delete. The customer detail page lives in the crm handler.
func (h *Handler) Routes(r chi.Router) {
	r.Get(h.base, h.List)
	r.Post(h.base, h.Create)
	r.Delete(h.base+"/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	parties, err := h.svc.List(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, parties)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), orgID, service.Input{
		Name:    f.Get("name"),
		Email:   f.Get("email"),
		Phone:   f.Get("phone"),
		Address: f.Get("address"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, p.ID)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), orgID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteOK(w)
}
