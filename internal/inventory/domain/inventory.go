// Package domain defines stock moves and the stock levels derived from them.
package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MoveType is the direction of a stock move.
type MoveType string

const (
	MoveIn     MoveType = "IN"
	MoveOut    MoveType = "OUT"
	MoveAdjust MoveType = "ADJUST"
)

// MoveTypes lists the valid move types.
var MoveTypes = []string{string(MoveIn), string(MoveOut), string(MoveAdjust)}

// ErrInvalidQty is returned by ParseQty for input that is not a number.
var ErrInvalidQty = errors.New("invalid quantity")

// Delta returns the change in stock of a move of qty units: IN adds, OUT removes and ADJUST
// applies qty as signed.
func (t MoveType) Delta(qty int64) int64 {
	if t == MoveOut {
		return -qty
	}
	return qty
}

// ValidQty reports whether qty is allowed for the move type. IN and OUT take positive
// quantities; ADJUST takes any non-zero quantity.
func (t MoveType) ValidQty(qty int64) bool {
	if t == MoveAdjust {
		return qty != 0
	}
	return qty > 0
}

// ParseQty parses a decimal quantity and rounds it half away from zero to whole units.
func ParseQty(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidQty
	}
	r := d.Round(0)
	if !r.IsInteger() || r.Abs().GreaterThan(decimal.NewFromInt(1<<31-1)) {
		return 0, ErrInvalidQty
	}
	return r.IntPart(), nil
}

// Move is a single stock movement of one product.
type Move struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"-"`
	ProductID   string    `json:"productId"`
	ProductSKU  string    `json:"productSku,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	Type        MoveType  `json:"type"`
	Qty         int64     `json:"qty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MoveTotal is the summed quantity of one product's moves of one type.
type MoveTotal struct {
	ProductID string
	Type      MoveType
	Qty       int64
}

// ProductRef names a product in a stock snapshot.
type ProductRef struct {
	ID   string
	SKU  string
	Name string
	Unit string
}

// StockLevel is the on-hand quantity of one product.
type StockLevel struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	OnHand    int64  `json:"onHand"`
}

// Snapshot computes on-hand stock for every product from the move totals. Products without
// moves are listed with zero stock. The result is ordered by SKU.
func Snapshot(products []ProductRef, totals []MoveTotal) []StockLevel {
	onHand := make(map[string]int64, len(products))
	for _, t := range totals {
		onHand[t.ProductID] += t.Type.Delta(t.Qty)
	}
	out := make([]StockLevel, 0, len(products))
	for _, p := range products {
		out = append(out, StockLevel{ProductID: p.ID, SKU: p.SKU, Name: p.Name, Unit: p.Unit, OnHand: onHand[p.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}
