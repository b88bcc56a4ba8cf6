package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const routeGuardQuery = "data.erp.route_guard.decision"

// routeGuardPolicy mirrors StaticEvaluator. Protected prefixes match on whole path segments.
const routeGuardPolicy = `package erp.route_guard

default decision := "allow"

landing := {"/", "/dashboard"}

under(path, prefix) if path == prefix

under(path, prefix) if startswith(path, concat("", [prefix, "/"]))

protected if {
	some prefix in input.protected_prefixes
	under(input.path, prefix)
}

public if {
	some p in input.public_paths
	input.path == p
}

decision := "redirect_sign_in" if {
	protected
	not input.authenticated
}

decision := "redirect_dashboard" if {
	public
	input.authenticated
	not landing[input.path]
}
`

// OPAEvaluator evaluates the route guard with an embedded Rego policy. The query is
// compiled and prepared once; evaluation failures fall back to the static table.
type OPAEvaluator struct {
	table    RouteTable
	query    rego.PreparedEvalQuery
	fallback *StaticEvaluator
}

// NewOPAEvaluator compiles the route guard policy for table. Returns an error only if the
// policy does not compile.
func NewOPAEvaluator(ctx context.Context, table RouteTable) (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"route_guard.rego": routeGuardPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile route guard policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(routeGuardQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare route guard query: %w", err)
	}
	return &OPAEvaluator{table: table, query: pq, fallback: NewStaticEvaluator(table)}, nil
}

// HealthCheck evaluates the prepared policy against a fixed request and checks the answer.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.eval(ctx, RouteInput{Path: "/dashboard", Authenticated: false})
	if err != nil {
		return err
	}
	if d != RedirectSignIn {
		return fmt.Errorf("route guard policy returned %q for an anonymous dashboard request", d)
	}
	return nil
}

// Decide implements Evaluator. When Rego evaluation fails the decision comes from the
// static table and the failure is logged, so a broken policy never opens protected pages.
func (e *OPAEvaluator) Decide(ctx context.Context, in RouteInput) (RouteDecision, error) {
	d, err := e.eval(ctx, in)
	if err != nil {
		log.Printf("policy: route guard evaluation failed: %v, using static table", err)
		return e.fallback.decide(in), nil
	}
	return d, nil
}

func (e *OPAEvaluator) eval(ctx context.Context, in RouteInput) (RouteDecision, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(e.buildInput(in)))
	if err != nil {
		return Allow, fmt.Errorf("eval: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Allow, fmt.Errorf("policy query returned no result")
	}
	s, ok := rs[0].Expressions[0].Value.(string)
	if !ok {
		return Allow, fmt.Errorf("policy decision has type %T", rs[0].Expressions[0].Value)
	}
	switch d := RouteDecision(s); d {
	case Allow, RedirectSignIn, RedirectDashboard:
		return d, nil
	default:
		return Allow, fmt.Errorf("unknown policy decision %q", s)
	}
}

func (e *OPAEvaluator) buildInput(in RouteInput) map[string]interface{} {
	protected := make([]interface{}, len(e.table.Protected))
	for i, p := range e.table.Protected {
		protected[i] = p
	}
	public := make([]interface{}, len(e.table.Public))
	for i, p := range e.table.Public {
		public[i] = p
	}
	return map[string]interface{}{
		"path":               in.Path,
		"authenticated":      in.Authenticated,
		"protected_prefixes": protected,
		"public_paths":       public,
	}
}

// New returns the evaluator selected by name: "static" or "rego" (default).
func New(ctx context.Context, name string, table RouteTable) (Evaluator, error) {
	if name == "static" {
		return NewStaticEvaluator(table), nil
	}
	return NewOPAEvaluator(ctx, table)
}
