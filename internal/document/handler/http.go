// Package handler serves the invoice and bill endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/document/domain"
	"smallbiz-erp/backend/internal/document/service"
	"smallbiz-erp/backend/internal/platform/httpx"
)

type Handler struct {
	svc  *service.Service
	base string
}

// NewHandler serves svc's documents under /invoices or /bills.
func NewHandler(svc *service.Service) *Handler {
	base := "/bills"
	if svc.Kind().Name == domain.Invoice.Name {
		base = "/invoices"
	}
	return &Handler{svc: svc, base: base}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get(h.base, h.List)
	r.Post(h.base, h.Create)
	r.Get(h.base+"/{id}", h.Get)
	r.Delete(h.base+"/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.List(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, docs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Get(r.Context(), orgID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
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
	kind := h.svc.Kind()
	date := f.Get(kind.DateField)
	if kind.Name == domain.Invoice.Name && f.Get("issueDate") != "" {
		date = f.Get("issueDate")
	}
	d, err := h.svc.Create(r.Context(), orgID, service.Input{
		PartyID:   f.Get(kind.PartyField),
		Number:    f.Get("number"),
		Date:      date,
		DueDate:   f.Get("dueDate"),
		Notes:     f.Get("notes"),
		LinesJSON: f.Get("linesJson"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, d.ID)
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
