package domain

import (
	"errors"
	"testing"
)

func TestMoveType_Delta(t *testing.T) {
	testCases := []struct {
		typ  MoveType
		qty  int64
		want int64
	}{
		{MoveIn, 5, 5},
		{MoveOut, 3, -3},
		{MoveAdjust, -2, -2},
		{MoveAdjust, 4, 4},
	}
	for _, tc := range testCases {
		if got := tc.typ.Delta(tc.qty); got != tc.want {
			t.Errorf("%s.Delta(%d) = %d, want %d", tc.typ, tc.qty, got, tc.want)
		}
	}
}

func TestMoveType_ValidQty(t *testing.T) {
	if !MoveAdjust.ValidQty(-3) || MoveAdjust.ValidQty(0) {
		t.Error("ADJUST takes any non-zero quantity")
	}
	if MoveIn.ValidQty(-1) || MoveOut.ValidQty(0) || !MoveOut.ValidQty(1) {
		t.Error("IN and OUT take positive quantities")
	}
}

func TestParseQty(t *testing.T) {
	testCases := []struct {
		in   string
		want int64
		err  bool
	}{
		{"5", 5, false},
		{" 2.5 ", 3, false},
		{"-2.5", -3, false},
		{"-4", -4, false},
		{"abc", 0, true},
		{"", 0, true},
		{"99999999999", 0, true},
	}
	for _, tc := range testCases {
		got, err := ParseQty(tc.in)
		if tc.err {
			if !errors.Is(err, ErrInvalidQty) {
				t.Errorf("ParseQty(%q) err = %v, want ErrInvalidQty", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseQty(%q) = %d, %v, want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	products := []ProductRef{{ID: "b", SKU: "B-1", Name: "Bolt"}, {ID: "a", SKU: "A-1", Name: "Anchor"}, {ID: "c", SKU: "C-1", Name: "Clip"}}
	totals := []MoveTotal{
		{ProductID: "a", Type: MoveIn, Qty: 10},
		{ProductID: "a", Type: MoveOut, Qty: 4},
		{ProductID: "a", Type: MoveAdjust, Qty: -1},
		{ProductID: "b", Type: MoveOut, Qty: 2},
	}
	got := Snapshot(products, totals)
	want := map[string]int64{"A-1": 5, "B-1": -2, "C-1": 0}
	if len(got) != 3 || got[0].SKU != "A-1" || got[2].SKU != "C-1" {
		t.Fatalf("snapshot order = %+v", got)
	}
	for _, s := range got {
		if s.OnHand != want[s.SKU] {
			t.Errorf("%s on hand = %d, want %d", s.SKU, s.OnHand, want[s.SKU])
		}
	}
}
