// Package handler serves the dashboard.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/dashboard/service"
	"smallbiz-erp/backend/internal/platform/httpx"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.Summary)
	r.Get("/dashboard/audit", h.Audit)
}

// Summary answers {"counts": {"customers": n, ...}}.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	counts, err := h.svc.Counts(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	logs, err := h.svc.AuditTrail(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": logs})
}
