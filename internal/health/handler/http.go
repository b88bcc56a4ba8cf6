package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/platform/httpx"
)

type HTTPHandler struct {
	checker *Checker
}

func NewHTTPHandler(checker *Checker) *HTTPHandler {
	return &HTTPHandler{checker: checker}
}

func (h *HTTPHandler) Routes(r chi.Router) {
	r.Get("/healthz", h.Live)
	r.Get("/readyz", h.Ready)
}

// Live reports that the process serves requests.
func (h *HTTPHandler) Live(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers 503 while a dependency is down. The failure is logged, not returned.
func (h *HTTPHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Check(r.Context()); err != nil {
		log.Printf("health: not ready: %v", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
