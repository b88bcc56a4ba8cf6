// Package handler serves the sign-up, sign-in and sign-out endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/audit"
	auditdomain "smallbiz-erp/backend/internal/audit/domain"
	"smallbiz-erp/backend/internal/identity/service"
	"smallbiz-erp/backend/internal/platform/httpx"
	"smallbiz-erp/backend/internal/session"
	"smallbiz-erp/backend/internal/telemetry"
	telemetrydomain "smallbiz-erp/backend/internal/telemetry/domain"
)

// DashboardPath is where a successful sign-in or sign-up lands.
const DashboardPath = "/dashboard"

const (
	msgEmailTaken         = "User already exists with this email."
	msgInvalidCredentials = "Invalid email or password."
	msgInvalidInput       = "Invalid input"
)

// Handler serves the auth pages and form posts.
type Handler struct {
	auth     *service.AuthService
	cookies  *session.CookieStore
	verifier *session.Verifier
	audit    audit.AuditLogger
	events   telemetry.EventEmitter
}

// NewHandler returns an auth handler. auditLogger and events may be nil.
func NewHandler(auth *service.AuthService, cookies *session.CookieStore, verifier *session.Verifier, auditLogger audit.AuditLogger, events telemetry.EventEmitter) *Handler {
	return &Handler{auth: auth, cookies: cookies, verifier: verifier, audit: auditLogger, events: events}
}

// Routes registers the public auth routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/sign-in", h.form("sign-in"))
	r.Get("/sign-up", h.form("sign-up"))
	r.Post("/sign-up", h.SignUp)
	r.Post("/sign-in", h.SignIn)
	r.Post("/sign-out", h.SignOut)
}

// Home reports whether the request carries a live session.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	_, err := h.verifier.Authenticate(r)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"authenticated": err == nil})
}

func (h *Handler) form(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"form": name})
	}
}

// SignUp creates the account and signs it in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return
	}
	res, err := h.auth.SignUp(r.Context(), f.Get("name"), f.Get("email"), f.Get("password"), audit.ClientIP(r))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		httpx.WriteMessage(w, http.StatusConflict, msgEmailTaken)
		return
	default:
		// Field errors become 422.
		httpx.WriteError(w, r, err)
		return
	}
	h.record(r.Context(), res, auditdomain.ActionSignUp, telemetrydomain.EventTypeSignUp)
	h.startSession(w, r, res)
}

// SignIn checks the credentials and starts a session.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.Form(w, r)
	if err != nil {
		httpx.BadRequest(w, err)
		return
	}
	res, err := h.auth.SignIn(r.Context(), f.Get("email"), f.Get("password"), audit.ClientIP(r))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteMessage(w, http.StatusUnprocessableEntity, msgInvalidInput)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		h.record(r.Context(), nil, auditdomain.ActionSignInFailure, telemetrydomain.EventTypeSignInFail)
		httpx.WriteMessage(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	default:
		httpx.WriteError(w, r, err)
		return
	}
	h.record(r.Context(), res, auditdomain.ActionSignIn, telemetrydomain.EventTypeSignIn)
	h.startSession(w, r, res)
}

// SignOut revokes the current session, clears the cookie and sends the browser to sign-in.
// It succeeds without a session too.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if s, err := h.verifier.Authenticate(r); err == nil {
		if err := h.auth.SignOut(r.Context(), s.ID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		h.record(r.Context(), &service.AuthResult{SessionID: s.ID, UserID: s.UserID, OrgID: s.TenantID()},
			auditdomain.ActionSignOut, telemetrydomain.EventTypeSignOut)
	}
	h.cookies.ClearSessionCookie(w)
	http.Redirect(w, r, session.SignInPath, http.StatusSeeOther)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, res *service.AuthResult) {
	h.cookies.SetSessionCookie(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// record writes the audit entry and telemetry event of an auth action. Both are best-effort.
func (h *Handler) record(ctx context.Context, res *service.AuthResult, action, eventType string) {
	var orgID, userID, sessionID string
	if res != nil {
		orgID, userID, sessionID = res.OrgID, res.UserID, res.SessionID
		if orgID == "" {
			orgID = userID
		}
	}
	if h.audit != nil {
		h.audit.LogEvent(ctx, orgID, userID, action, "session", "")
	}
	meta, _ := json.Marshal(map[string]string{"action": action})
	telemetry.EmitAsync(h.events, ctx, &telemetrydomain.Event{
		OrgID:     orgID,
		UserID:    userID,
		SessionID: sessionID,
		EventType: eventType,
		Source:    "identity",
		Metadata:  meta,
	})
}
