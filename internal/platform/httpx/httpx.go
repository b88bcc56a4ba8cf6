// Package httpx holds the JSON response and request-binding helpers shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/platform/validation"
	"smallbiz-erp/backend/internal/session"
)

// MaxBodyBytes bounds form and JSON request bodies.
const MaxBodyBytes = 1 << 20

// Created is the body of a successful create.
type Created struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// OK is the body of a successful update or delete.
type OK struct {
	OK bool `json:"ok"`
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type fieldErrorsBody struct {
	OK     bool                   `json:"ok"`
	Errors validation.FieldErrors `json:"errors"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"ok":false,"error":msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// WriteCreated writes 201 {"ok":true,"id":id}.
func WriteCreated(w http.ResponseWriter, id string) {
	WriteJSON(w, http.StatusCreated, Created{OK: true, ID: id})
}

// WriteOK writes 200 {"ok":true}.
func WriteOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, OK{OK: true})
}

// WriteError maps err to a response:
// no session → 303 to sign-in; field errors → 422; not found (including another org's rows) → 404;
// in use → 409; anything else is logged and answered with a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var fe validation.FieldErrors
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		http.Redirect(w, r, session.SignInPath, http.StatusSeeOther)
	case errors.As(err, &fe):
		WriteJSON(w, http.StatusUnprocessableEntity, fieldErrorsBody{Errors: fe})
	case errors.Is(err, tenancy.ErrNotFound):
		WriteMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, tenancy.ErrInUse):
		WriteMessage(w, http.StatusConflict, tenancy.ErrInUse.Error())
	default:
		log.Printf("http: %s %s failed: %v", r.Method, r.URL.Path, err)
		WriteMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// Form reads the request input as flat string fields. URL-encoded and multipart forms are read
// with ParseForm; a JSON object body is accepted too, with numbers and booleans rendered as strings.
func Form(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	switch ct {
	case "application/json":
		return jsonForm(r.Body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}
	return r.PostForm, nil
}

func jsonForm(body io.Reader) (url.Values, error) {
	var raw map[string]any
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}
	out := url.Values{}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			out.Set(k, val)
		case json.Number:
			out.Set(k, val.String())
		case bool:
			out.Set(k, strconv.FormatBool(val))
		default:
			// Nested values (e.g. invoice lines) are passed through as JSON text.
			b, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			out.Set(k, string(b))
		}
	}
	return out, nil
}

// BadRequest answers an unreadable body with 400.
func BadRequest(w http.ResponseWriter, err error) {
	WriteMessage(w, http.StatusBadRequest, "invalid request body")
	log.Printf("http: bad request body: %v", err)
}

// Tenant resolves the tenant of the verified session in r. When there is none it sends the
// client to sign-in and returns false.
func Tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	orgID, err := session.ResolveTenantID(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return "", false
	}
	return orgID, true
}
