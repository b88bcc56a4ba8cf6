// Package domain defines sales invoices and purchase bills. Both are a dated header owned by
// a trading party plus priced lines; Kind carries what differs between them.
package domain

import (
	"encoding/json"
	"time"

	"smallbiz-erp/backend/internal/platform/validation"
)

// Kind describes one document type and where it is stored.
type Kind struct {
	Name             string
	Table            string
	LineTable        string
	LineFK           string
	PartyColumn      string
	DateColumn       string
	NumberConstraint string
	PartyTable       string
	PartyField       string // form and JSON name of the party id
	DateField        string // form and JSON name of the document date
}

var (
	Invoice = Kind{
		Name:             "invoice",
		Table:            "sales_invoices",
		LineTable:        "sales_invoice_lines",
		LineFK:           "invoice_id",
		PartyColumn:      "customer_id",
		DateColumn:       "invoice_date",
		NumberConstraint: "sales_invoices_org_number_key",
		PartyField:       "customerId",
		DateField:        "invoiceDate",
		PartyTable:       "customers",
	}
	Bill = Kind{
		Name:             "bill",
		Table:            "purchase_bills",
		LineTable:        "purchase_bill_lines",
		LineFK:           "bill_id",
		PartyColumn:      "vendor_id",
		DateColumn:       "bill_date",
		NumberConstraint: "purchase_bills_org_number_key",
		PartyField:       "vendorId",
		DateField:        "billDate",
		PartyTable:       "vendors",
	}
)

// Document is an invoice or a bill. Totals are derived from the lines; tax is always zero.
type Document struct {
	Kind          Kind
	ID            string
	OrgID         string
	PartyID       string
	PartyName     string
	Number        string
	Date          time.Time
	DueDate       *time.Time
	Notes         string
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
	CreatedAt     time.Time
	Lines         []Line
}

// Line is one priced row of a document. ProductID is optional.
type Line struct {
	ID             string `json:"id"`
	ProductID      string `json:"productId,omitempty"`
	Description    string `json:"description"`
	Qty            int64  `json:"qty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// ComputeTotals sets each line total and the document subtotal, tax and total.
func (d *Document) ComputeTotals() {
	var subtotal int64
	for i := range d.Lines {
		d.Lines[i].LineTotalCents = d.Lines[i].Qty * d.Lines[i].UnitPriceCents
		subtotal += d.Lines[i].LineTotalCents
	}
	d.SubtotalCents = subtotal
	d.TaxCents = 0
	d.TotalCents = d.SubtotalCents + d.TaxCents
}

// MarshalJSON names the party and date fields after the document kind.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":            d.ID,
		"number":        d.Number,
		"subtotalCents": d.SubtotalCents,
		"taxCents":      d.TaxCents,
		"totalCents":    d.TotalCents,
		"createdAt":     d.CreatedAt,
	}
	out[d.Kind.PartyField] = d.PartyID
	out[d.Kind.DateField] = d.Date.Format(validation.DateLayout)
	if d.PartyName != "" {
		out["partyName"] = d.PartyName
	}
	if d.DueDate != nil {
		out["dueDate"] = d.DueDate.Format(validation.DateLayout)
	}
	if d.Notes != "" {
		out["notes"] = d.Notes
	}
	if d.Lines != nil {
		out["lines"] = d.Lines
	}
	return json.Marshal(out)
}
