// Package seed fills an organization with demo records for local development.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	accountingservice "smallbiz-erp/backend/internal/accounting/service"
	crmservice "smallbiz-erp/backend/internal/crm/service"
	documentdomain "smallbiz-erp/backend/internal/document/domain"
	documentservice "smallbiz-erp/backend/internal/document/service"
	inventoryservice "smallbiz-erp/backend/internal/inventory/service"
	partydomain "smallbiz-erp/backend/internal/party/domain"
	partyservice "smallbiz-erp/backend/internal/party/service"
	productservice "smallbiz-erp/backend/internal/product/service"
	"smallbiz-erp/backend/internal/server"
)

// Result reports what Demo created.
type Result struct {
	Skipped  bool
	Customer string
	Invoice  string
	Bill     string
}

type demoLine struct {
	ProductID      string `json:"productId"`
	Description    string `json:"description"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Demo creates the chart of accounts, a customer with CRM history, a vendor, two products,
// stock moves, an invoice, a bill and two journal entries for orgID. It does nothing when the
// org already has customers.
func Demo(ctx context.Context, orgID string, repos server.Repositories) (*Result, error) {
	n, err := repos.Customers.Count(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if n > 0 {
		return &Result{Skipped: true}, nil
	}

	accounting := accountingservice.NewService(repos.Accounts)
	customers := partyservice.NewService(partydomain.KindCustomer, repos.Customers)
	vendors := partyservice.NewService(partydomain.KindVendor, repos.Vendors)
	products := productservice.NewService(repos.Products)
	invoices := documentservice.NewService(documentdomain.Invoice, repos.Invoices, customers, repos.Products)
	bills := documentservice.NewService(documentdomain.Bill, repos.Bills, vendors, repos.Products)
	inventory := inventoryservice.NewService(repos.Inventory, repos.Products)
	crm := crmservice.NewService(repos.CRM, customers, invoices)

	if _, err := accounting.InitChart(ctx, orgID); err != nil {
		return nil, fmt.Errorf("chart of accounts: %w", err)
	}

	acme, err := customers.Create(ctx, orgID, partyservice.Input{Name: "Acme Retail", Email: "ap@acme.example", Phone: "+1 555 0100", Address: "1 Main St"})
	if err != nil {
		return nil, fmt.Errorf("customer: %w", err)
	}
	supplier, err := vendors.Create(ctx, orgID, partyservice.Input{Name: "Northwind Supply", Email: "billing@northwind.example"})
	if err != nil {
		return nil, fmt.Errorf("vendor: %w", err)
	}

	widget, err := products.Create(ctx, orgID, productservice.Input{SKU: "WID-001", Name: "Widget", Unit: "pcs", Price: "12.50"})
	if err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}
	consulting, err := products.Create(ctx, orgID, productservice.Input{SKU: "SRV-HOUR", Name: "Consulting hour", Unit: "h", Price: "90"})
	if err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}

	for _, m := range []inventoryservice.MoveInput{
		{ProductID: widget.ID, Type: "IN", Qty: "100", Note: "Opening stock"},
		{ProductID: widget.ID, Type: "OUT", Qty: "10", Note: "Invoice INV-0001"},
		{ProductID: widget.ID, Type: "ADJUST", Qty: "-2", Note: "Damaged"},
	} {
		if _, err := inventory.CreateMove(ctx, orgID, m); err != nil {
			return nil, fmt.Errorf("stock move: %w", err)
		}
	}

	invoiceLines, _ := json.Marshal([]demoLine{
		{ProductID: widget.ID, Description: "Widget", Qty: 10, UnitPriceCents: widget.PriceCents},
		{ProductID: consulting.ID, Description: "Installation", Qty: 2, UnitPriceCents: consulting.PriceCents},
	})
	invoice, err := invoices.Create(ctx, orgID, documentservice.Input{PartyID: acme.ID, Number: "INV-0001", LinesJSON: string(invoiceLines)})
	if err != nil {
		return nil, fmt.Errorf("invoice: %w", err)
	}
	billLines, _ := json.Marshal([]demoLine{{ProductID: widget.ID, Description: "Widgets, case of 100", Qty: 1, UnitPriceCents: 60000}})
	bill, err := bills.Create(ctx, orgID, documentservice.Input{PartyID: supplier.ID, Number: "NW-7781", LinesJSON: string(billLines)})
	if err != nil {
		return nil, fmt.Errorf("bill: %w", err)
	}

	if _, err := crm.CreateContact(ctx, orgID, acme.ID, crmservice.ContactInput{FirstName: "Dana", LastName: "Reyes", JobTitle: "Purchasing", Email: "dana@acme.example"}); err != nil {
		return nil, fmt.Errorf("contact: %w", err)
	}
	if _, err := crm.CreateOpportunity(ctx, orgID, acme.ID, crmservice.OpportunityInput{Title: "Spring restock", Value: "2500", Stage: "PROPOSAL"}); err != nil {
		return nil, fmt.Errorf("opportunity: %w", err)
	}
	if _, err := crm.LogActivity(ctx, orgID, acme.ID, crmservice.ActivityInput{Type: "CALL", Subject: "Intro call"}); err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	if _, err := crm.CreateTask(ctx, orgID, acme.ID, crmservice.TaskInput{Title: "Send proposal", Priority: "HIGH"}); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}

	if err := postDemoEntries(ctx, accounting, orgID, invoice, bill); err != nil {
		return nil, err
	}
	log.Printf("seed: org %s: customer %s, invoice %s, bill %s", orgID, acme.ID, invoice.ID, bill.ID)
	return &Result{Customer: acme.ID, Invoice: invoice.ID, Bill: bill.ID}, nil
}

// postDemoEntries books the invoice against receivables and the bill against payables.
func postDemoEntries(ctx context.Context, accounting *accountingservice.Service, orgID string, invoice, bill *documentdomain.Document) error {
	overview, err := accounting.Overview(ctx, orgID)
	if err != nil {
		return fmt.Errorf("accounts: %w", err)
	}
	byCode := make(map[string]string, len(overview.Accounts))
	for _, a := range overview.Accounts {
		byCode[a.Code] = a.ID
	}
	entries := []accountingservice.EntryInput{
		{Memo: "Invoice " + invoice.Number, DebitAccountID: byCode["1100"], CreditAccountID: byCode["4000"], Amount: cents(invoice.TotalCents)},
		{Memo: "Bill " + bill.Number, DebitAccountID: byCode["1200"], CreditAccountID: byCode["2000"], Amount: cents(bill.TotalCents)},
	}
	for _, in := range entries {
		if _, err := accounting.PostEntry(ctx, orgID, in); err != nil {
			return fmt.Errorf("journal entry %q: %w", in.Memo, err)
		}
	}
	return nil
}

func cents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
