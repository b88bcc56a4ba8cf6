// Package handler serves the inventory endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/inventory/service"
	"smallbiz-erp/backend/internal/platform/httpx"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/inventory", h.Overview)
	r.Post("/inventory/moves", h.CreateMove)
	r.Delete("/inventory/moves/{id}", h.DeleteMove)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	ov, err := h.svc.Overview(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ov)
}

func (h *Handler) CreateMove(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return
	}
	m, err := h.svc.CreateMove(r.Context(), orgID, service.MoveInput{
		ProductID: f.Get("productId"),
		Type:      f.Get("type"),
		Qty:       f.Get("qty"),
		Note:      f.Get("note"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, m.ID)
}

func (h *Handler) DeleteMove(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteMove(r.Context(), orgID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteOK(w)
}
