// Package server assembles the HTTP application router and the ops gRPC server.
package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	accountinghandler "smallbiz-erp/backend/internal/accounting/handler"
	accountingrepo "smallbiz-erp/backend/internal/accounting/repository"
	accountingservice "smallbiz-erp/backend/internal/accounting/service"
	"smallbiz-erp/backend/internal/audit"
	crmhandler "smallbiz-erp/backend/internal/crm/handler"
	crmrepo "smallbiz-erp/backend/internal/crm/repository"
	crmservice "smallbiz-erp/backend/internal/crm/service"
	dashboardhandler "smallbiz-erp/backend/internal/dashboard/handler"
	dashboardservice "smallbiz-erp/backend/internal/dashboard/service"
	documentdomain "smallbiz-erp/backend/internal/document/domain"
	documenthandler "smallbiz-erp/backend/internal/document/handler"
	documentrepo "smallbiz-erp/backend/internal/document/repository"
	documentservice "smallbiz-erp/backend/internal/document/service"
	healthhandler "smallbiz-erp/backend/internal/health/handler"
	identityhandler "smallbiz-erp/backend/internal/identity/handler"
	identityservice "smallbiz-erp/backend/internal/identity/service"
	inventoryhandler "smallbiz-erp/backend/internal/inventory/handler"
	inventoryrepo "smallbiz-erp/backend/internal/inventory/repository"
	inventoryservice "smallbiz-erp/backend/internal/inventory/service"
	partydomain "smallbiz-erp/backend/internal/party/domain"
	partyhandler "smallbiz-erp/backend/internal/party/handler"
	partyrepo "smallbiz-erp/backend/internal/party/repository"
	partyservice "smallbiz-erp/backend/internal/party/service"
	"smallbiz-erp/backend/internal/policy/engine"
	producthandler "smallbiz-erp/backend/internal/product/handler"
	productrepo "smallbiz-erp/backend/internal/product/repository"
	productservice "smallbiz-erp/backend/internal/product/service"
	"smallbiz-erp/backend/internal/security"
	"smallbiz-erp/backend/internal/server/middleware"
	"smallbiz-erp/backend/internal/session"
	"smallbiz-erp/backend/internal/telemetry"
	telemetryotel "smallbiz-erp/backend/internal/telemetry/otel"
)

// Repositories holds the tenant-scoped stores of the business modules.
type Repositories struct {
	Accounts  accountingrepo.Repository
	Customers partyrepo.Repository
	Vendors   partyrepo.Repository
	Products  productrepo.Repository
	Invoices  documentrepo.Repository
	Bills     documentrepo.Repository
	Inventory inventoryrepo.Repository
	CRM       crmrepo.Repository
}

// NewPostgresRepositories returns the Postgres stores sharing conn.
func NewPostgresRepositories(conn *sql.DB) Repositories {
	return Repositories{
		Accounts:  accountingrepo.NewPostgresRepository(conn),
		Customers: partyrepo.NewPostgresRepository(conn, partydomain.KindCustomer),
		Vendors:   partyrepo.NewPostgresRepository(conn, partydomain.KindVendor),
		Products:  productrepo.NewPostgresRepository(conn),
		Invoices:  documentrepo.NewPostgresRepository(conn, documentdomain.Invoice),
		Bills:     documentrepo.NewPostgresRepository(conn, documentdomain.Bill),
		Inventory: inventoryrepo.NewPostgresRepository(conn),
		CRM:       crmrepo.NewPostgresRepository(conn),
	}
}

// Deps holds what the router needs. AuditLogger, AuditReader, Events, Tracer, Meter and
// Logger may be nil.
type Deps struct {
	Codec       *security.SessionCodec
	Cookies     *session.CookieStore
	Verifier    *session.Verifier
	Evaluator   engine.Evaluator
	Auth        *identityservice.AuthService
	Health      *healthhandler.Checker
	Repos       Repositories
	AuditLogger audit.AuditLogger
	AuditReader dashboardservice.AuditReader
	Events      telemetry.EventEmitter
	Tracer      trace.Tracer
	Meter       metric.Meter
	Logger      *slog.Logger
}

// healthPaths are not emitted as telemetry.
var healthPaths = map[string]bool{"/healthz": true, "/readyz": true}

// NewRouter builds the application router. Every request passes tracing, access logging and
// the route guard. Business routes additionally require a verified session and are audited.
func NewRouter(d Deps) (http.Handler, error) {
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(telemetryotel.InstrumentationName)
	}
	if d.Meter == nil {
		d.Meter = otel.Meter(telemetryotel.InstrumentationName)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	tracing, err := middleware.Tracing(d.Tracer, d.Meter)
	if err != nil {
		return nil, fmt.Errorf("tracing middleware: %w", err)
	}

	r := chi.NewRouter()
	r.Use(tracing, middleware.WithRequestLogging(d.Logger), middleware.ClientIP)
	r.Use(middleware.RouteGuard(d.Codec, d.Cookies, d.Evaluator))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Telemetry(d.Events, healthPaths))
		identityhandler.NewHandler(d.Auth, d.Cookies, d.Verifier, d.AuditLogger, d.Events).Routes(r)
		healthhandler.NewHTTPHandler(d.Health).Routes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Verifier.Require, middleware.Audit(d.AuditLogger), middleware.Telemetry(d.Events, nil))
		for _, h := range businessHandlers(d.Repos, d.AuditReader) {
			h.Routes(r)
		}
	})
	return r, nil
}

type routes interface {
	Routes(r chi.Router)
}

func businessHandlers(repos Repositories, auditReader dashboardservice.AuditReader) []routes {
	customers := partyservice.NewService(partydomain.KindCustomer, repos.Customers)
	vendors := partyservice.NewService(partydomain.KindVendor, repos.Vendors)
	invoices := documentservice.NewService(documentdomain.Invoice, repos.Invoices, customers, repos.Products)
	bills := documentservice.NewService(documentdomain.Bill, repos.Bills, vendors, repos.Products)

	dashboard := dashboardservice.NewService(map[string]dashboardservice.CountFunc{
		"customers":      repos.Customers.Count,
		"vendors":        repos.Vendors.Count,
		"products":       repos.Products.Count,
		"invoices":       repos.Invoices.Count,
		"bills":          repos.Bills.Count,
		"inventoryMoves": repos.Inventory.CountMoves,
		"accounts":       repos.Accounts.CountAccounts,
		"journalEntries": repos.Accounts.CountEntries,
	}, auditReader)

	return []routes{
		dashboardhandler.NewHandler(dashboard),
		partyhandler.NewHandler(customers),
		partyhandler.NewHandler(vendors),
		crmhandler.NewHandler(crmservice.NewService(repos.CRM, customers, invoices)),
		producthandler.NewHandler(productservice.NewService(repos.Products)),
		documenthandler.NewHandler(invoices),
		documenthandler.NewHandler(bills),
		inventoryhandler.NewHandler(inventoryservice.NewService(repos.Inventory, repos.Products)),
		accountinghandler.NewHandler(accountingservice.NewService(repos.Accounts)),
	}
}
