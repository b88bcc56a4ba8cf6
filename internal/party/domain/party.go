// Package domain defines customers and vendors, the trading parties an org invoices or is billed by.
package domain

import "time"

// Kind selects which table a party lives in.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindVendor   Kind = "vendor"
)

// Table returns the table that stores parties of kind k.
func (k Kind) Table() string {
	if k == KindVendor {
		return "vendors"
	}
	return "customers"
}

// Party is a customer or a vendor. Email, Phone and Address are optional.
type Party struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"-"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
