package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/platform/validation"
	"smallbiz-erp/backend/internal/session"
)

func TestWriteError(t *testing.T) {
	fe := validation.FieldErrors{}
	fe.Add("name", "Name is required")

	testCases := []struct {
		name     string
		err      error
		status   int
		location string
		body     string
	}{
		{"unauthenticated", session.ErrUnauthenticated, http.StatusSeeOther, "/sign-in", ""},
		{"field errors", fmt.Errorf("create: %w", fe.Err()), http.StatusUnprocessableEntity, "", `"errors":{"name":["Name is required"]}`},
		{"not found", tenancy.ErrNotFound, http.StatusNotFound, "", `"error":"not found"`},
		{"in use", tenancy.ErrInUse, http.StatusConflict, "", `"error":"record is in use"`},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, "", `"error":"internal error"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodPost, "/customers", nil), tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.location != "" && rec.Header().Get("Location") != tc.location {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tc.location)
			}
			if tc.body != "" && !strings.Contains(rec.Body.String(), tc.body) {
				t.Errorf("body = %s, want to contain %s", rec.Body.String(), tc.body)
			}
			if strings.Contains(rec.Body.String(), "connection reset") {
				t.Error("internal error details must not leak")
			}
		})
	}
}

func TestWriteCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteCreated(rec, "abc")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var body Created
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.ID != "abc" {
		t.Errorf("body = %+v", body)
	}
}

func TestForm(t *testing.T) {
	t.Run("urlencoded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("name=Acme&email=a%40b.co"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		f, err := Form(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("Form: %v", err)
		}
		if f.Get("name") != "Acme" || f.Get("email") != "a@b.co" {
			t.Errorf("form = %v", f)
		}
	})
	t.Run("json", func(t *testing.T) {
		body := `{"name":"Acme","qty":3,"active":true,"lines":[{"qty":1}],"skip":null}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		f, err := Form(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("Form: %v", err)
		}
		if f.Get("name") != "Acme" || f.Get("qty") != "3" || f.Get("active") != "true" {
			t.Errorf("form = %v", f)
		}
		if f.Get("lines") != `[{"qty":1}]` {
			t.Errorf("lines = %q", f.Get("lines"))
		}
		if _, ok := f["skip"]; ok {
			t.Error("null values should be dropped")
		}
	})
	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		if _, err := Form(httptest.NewRecorder(), req); err == nil {
			t.Fatal("Form should fail on malformed JSON")
		}
	})
}
