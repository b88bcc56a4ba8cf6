// Package handler serves the customer detail page and its CRM sub-resources.
package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/crm/repository"
	"smallbiz-erp/backend/internal/crm/service"
	"smallbiz-erp/backend/internal/platform/httpx"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers everything under /customers/{id}. List, create and delete of the customer
// itself belong to the party handler.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/customers/{id}", h.Detail)
	r.Post("/customers/{id}/contacts", h.CreateContact)
	r.Delete("/customers/{id}/contacts/{childID}", h.delete(repository.Contacts))
	r.Post("/customers/{id}/opportunities", h.CreateOpportunity)
	r.Patch("/customers/{id}/opportunities/{childID}/stage", h.UpdateStage)
	r.Delete("/customers/{id}/opportunities/{childID}", h.delete(repository.Opportunities))
	r.Post("/customers/{id}/activities", h.LogActivity)
	r.Delete("/customers/{id}/activities/{childID}", h.delete(repository.Activities))
	r.Post("/customers/{id}/tasks", h.CreateTask)
	r.Patch("/customers/{id}/tasks/{childID}/status", h.UpdateTaskStatus)
	r.Delete("/customers/{id}/tasks/{childID}", h.delete(repository.Tasks))
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Detail(r.Context(), orgID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	orgID, f, ok := tenantForm(w, r)
	if !ok {
		return
	}
	c, err := h.svc.CreateContact(r.Context(), orgID, chi.URLParam(r, "id"), service.ContactInput{
		FirstName: f.Get("firstName"),
		LastName:  f.Get("lastName"),
		JobTitle:  f.Get("jobTitle"),
		Email:     f.Get("email"),
		Phone:     f.Get("phone"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, c.ID)
}

func (h *Handler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	orgID, f, ok := tenantForm(w, r)
	if !ok {
		return
	}
	o, err := h.svc.CreateOpportunity(r.Context(), orgID, chi.URLParam(r, "id"), service.OpportunityInput{
		Title:       f.Get("title"),
		Value:       f.Get("value"),
		Stage:       f.Get("stage"),
		Description: f.Get("description"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, o.ID)
}

// UpdateStage answers with the committed stage. A 404 means nothing changed.
func (h *Handler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	orgID, f, ok := tenantForm(w, r)
	if !ok {
		return
	}
	o, err := h.svc.UpdateStage(r.Context(), orgID, chi.URLParam(r, "id"), chi.URLParam(r, "childID"), f.Get("stage"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": o.ID, "stage": o.Stage})
}

func (h *Handler) LogActivity(w http.ResponseWriter, r *http.Request) {
	orgID, f, ok := tenantForm(w, r)
	if !ok {
		return
	}
	a, err := h.svc.LogActivity(r.Context(), orgID, chi.URLParam(r, "id"), service.ActivityInput{
		Type:        f.Get("type"),
		Subject:     f.Get("subject"),
		Description: f.Get("description"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, a.ID)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	orgID, f, ok := tenantForm(w, r)
	if !ok {
		return
	}
	t, err := h.svc.CreateTask(r.Context(), orgID, chi.URLParam(r, "id"), service.TaskInput{
		Title:    f.Get("title"),
		DueDate:  f.Get("dueDate"),
		Priority: f.Get("priority"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteCreated(w, t.ID)
}

func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	orgID, f, ok := tenantForm(w, r)
	if !ok {
		return
	}
	t, err := h.svc.UpdateTaskStatus(r.Context(), orgID, chi.URLParam(r, "id"), chi.URLParam(r, "childID"), f.Get("status"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": t.ID, "status": t.Status})
}

func (h *Handler) delete(child repository.Child) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := httpx.Tenant(w, r)
		if !ok {
			return
		}
		if err := h.svc.Delete(r.Context(), child, orgID, chi.URLParam(r, "id"), chi.URLParam(r, "childID")); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteOK(w)
	}
}

func tenantForm(w http.ResponseWriter, r *http.Request) (string, url.Values, bool) {
	orgID, ok := httpx.Tenant(w, r)
	if !ok {
		return "", nil, false
	}
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return "", nil, false
	}
	return orgID, f, true
}
