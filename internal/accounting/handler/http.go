// Package handler serves the accounting endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/accounting/service"
	"smallbiz-erp/backend/internal/platform/httpx"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the accounting routes on r. r must already require a session.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/accounting", func(r chi.Router) {
		r.Get("/", h.Overview)
		r.Post("/init", h.InitChart)
		r.Get("/trial-balance", h.TrialBalance)
		r.Post("/accounts", h.CreateAccount)
		r.Delete("/accounts/{id}", h.DeleteAccount)
		r.Post("/entries", h.PostEntry)
		r.Delete("/entries/{id}", h.DeleteEntry)
	})
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

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return
	}
	a, err := h.svc.CreateAccount(r.Context(), orgID, service.AccountInput{
		Code: f.Get("code"),
		Name: f.Get("name"),
		Type: f.Get("type"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, a.ID)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), orgID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteOK(w)
}

// InitChart answers {"ok":true,"created":false} when the org already has accounts.
func (h *Handler) InitChart(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	created, err := h.svc.InitChart(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true, "created": created})
}

func (h *Handler) PostEntry(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return
	}
	e, err := h.svc.PostEntry(r.Context(), orgID, service.EntryInput{
		Date:            f.Get("date"),
		Memo:            f.Get("memo"),
		DebitAccountID:  f.Get("debitAccountId"),
		CreditAccountID: f.Get("creditAccountId"),
		Amount:          f.Get("amount"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, e.ID)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), orgID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteOK(w)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	tb, err := h.svc.TrialBalance(r.Context(), orgID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tb)
}
