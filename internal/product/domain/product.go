// Package domain defines the products an org sells, buys and stocks.
package domain

import "time"

// Product is a stocked or sold item. SKU is unique per org.
type Product struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"-"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	PriceCents int64     `json:"priceCents"`
	CreatedAt  time.Time `json:"createdAt"`
}
