package engine

import (
	"context"
	"strings"
)

// RouteDecision is the outcome of the route guard for one request.
type RouteDecision string

const (
	// Allow passes the request through unchanged.
	Allow RouteDecision = "allow"
	// RedirectSignIn sends an unauthenticated request for a protected page to the sign-in page.
	RedirectSignIn RouteDecision = "redirect_sign_in"
	// RedirectDashboard sends a signed-in user away from the sign-in and sign-up pages.
	RedirectDashboard RouteDecision = "redirect_dashboard"
)

// Location returns the redirect target for the decision, or "" for Allow.
func (d RouteDecision) Location() string {
	switch d {
	case RedirectSignIn:
		return "/sign-in"
	case RedirectDashboard:
		return "/dashboard"
	default:
		return ""
	}
}

// RouteInput is what the guard knows about a request: its path and whether the session
// cookie decoded to a valid, unexpired token.
type RouteInput struct {
	Path          string
	Authenticated bool
}

// RouteTable lists the protected path prefixes and the public pages.
type RouteTable struct {
	Protected []string
	Public    []string
}

// DefaultRouteTable returns the application's protected sections and public pages.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		Protected: []string{"/dashboard", "/customers", "/vendors", "/products", "/invoices", "/bills", "/inventory", "/accounting"},
		Public:    []string{"/", "/sign-in", "/sign-up"},
	}
}

// Evaluator decides how the route guard treats a request.
type Evaluator interface {
	// Decide returns the decision for in. Implementations return Allow together with any error.
	Decide(ctx context.Context, in RouteInput) (RouteDecision, error)
}

// StaticEvaluator applies the route table in Go. It is the fallback when the Rego
// evaluator fails and must agree with it on every path.
type StaticEvaluator struct {
	Table RouteTable
}

// NewStaticEvaluator returns a StaticEvaluator for table.
func NewStaticEvaluator(table RouteTable) *StaticEvaluator {
	return &StaticEvaluator{Table: table}
}

// Decide implements Evaluator.
func (e *StaticEvaluator) Decide(_ context.Context, in RouteInput) (RouteDecision, error) {
	return e.decide(in), nil
}

func (e *StaticEvaluator) decide(in RouteInput) RouteDecision {
	if !in.Authenticated && e.isProtected(in.Path) {
		return RedirectSignIn
	}
	if in.Authenticated && e.isPublic(in.Path) && in.Path != "/" && in.Path != "/dashboard" {
		return RedirectDashboard
	}
	return Allow
}

// isProtected matches whole path segments: /customers and /customers/42 are protected, /customersx is not.
func (e *StaticEvaluator) isProtected(path string) bool {
	for _, prefix := range e.Table.Protected {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (e *StaticEvaluator) isPublic(path string) bool {
	for _, p := range e.Table.Public {
		if path == p {
			return true
		}
	}
	return false
}
