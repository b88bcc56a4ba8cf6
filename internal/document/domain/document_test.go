package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestComputeTotals(t *testing.T) {
	d := &Document{Lines: []Line{
		{Qty: 3, UnitPriceCents: 1999},
		{Qty: 1, UnitPriceCents: 125000},
		{Qty: 10, UnitPriceCents: 0},
	}}
	d.ComputeTotals()
	if d.Lines[0].LineTotalCents != 5997 || d.Lines[1].LineTotalCents != 125000 || d.Lines[2].LineTotalCents != 0 {
		t.Errorf("line totals = %+v", d.Lines)
	}
	if d.SubtotalCents != 130997 || d.TaxCents != 0 || d.TotalCents != 130997 {
		t.Errorf("totals = %d/%d/%d", d.SubtotalCents, d.TaxCents, d.TotalCents)
	}
}

func TestMarshalJSON_NamesFieldsByKind(t *testing.T) {
	due := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		kind Kind
		want []string
	}{
		{Invoice, []string{`"customerId":"c1"`, `"invoiceDate":"2025-03-31"`, `"dueDate":"2025-04-30"`}},
		{Bill, []string{`"vendorId":"c1"`, `"billDate":"2025-03-31"`}},
	}
	for _, tc := range testCases {
		d := &Document{Kind: tc.kind, ID: "d1", PartyID: "c1", Number: "INV-1", Date: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), DueDate: &due}
		b, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		for _, w := range tc.want {
			if !strings.Contains(string(b), w) {
				t.Errorf("%s json = %s, want %s", tc.kind.Name, b, w)
			}
		}
	}
}
