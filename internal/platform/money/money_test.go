package money

import (
	"errors"
	"testing"
)

func TestParseCents(t *testing.T) {
	testCases := []struct {
		in   string
		want int64
	}{
		{"1250.00", 125000},
		{"1,250.00", 125000},
		{" 42 ", 4200},
		{"0.01", 1},
		{"19.999", 2000},
		{"0.005", 1},
		{"0.004", 0},
		{"-3.50", -350},
		{"1e2", 10000},
	}
	for _, tc := range testCases {
		got, err := ParseCents(tc.in)
		if err != nil {
			t.Errorf("ParseCents(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseCents_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12.3.4", "$5"} {
		if _, err := ParseCents(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseCents(%q): want ErrInvalidAmount, got %v", in, err)
		}
	}
	if _, err := ParseCents("99999999999999999999"); !errors.Is(err, ErrAmountOutOfRange) {
		t.Errorf("huge amount: want ErrAmountOutOfRange, got %v", err)
	}
}

func TestParseCents_Bound(t *testing.T) {
	if c, err := ParseCents("9999999999999.99"); err != nil || c != MaxCents {
		t.Errorf("ParseCents(max) = %d, %v", c, err)
	}
	if _, err := ParseCents("10000000000000.00"); !errors.Is(err, ErrAmountOutOfRange) {
		t.Errorf("just over max: want ErrAmountOutOfRange, got %v", err)
	}
}

func TestMulCents(t *testing.T) {
	testCases := []struct {
		name      string
		qty       int64
		cents     int64
		want      int64
		overRange bool
	}{
		{"simple", 3, 1250, 3750, false},
		{"zero price", 7, 0, 0, false},
		{"at max", 1, MaxCents, MaxCents, false},
		{"over max", 2, MaxCents, 0, true},
		{"would wrap int64", 2, 9223372036854775807, 0, true},
		{"large qty", 2147483647, 1000000000, 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MulCents(tc.qty, tc.cents)
			if tc.overRange {
				if !errors.Is(err, ErrAmountOutOfRange) {
					t.Fatalf("MulCents(%d, %d) = %d, %v; want ErrAmountOutOfRange", tc.qty, tc.cents, got, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("MulCents(%d, %d) = %d, %v; want %d", tc.qty, tc.cents, got, err, tc.want)
			}
		})
	}
}

func TestAddCents(t *testing.T) {
	if got, err := AddCents(100, 250); err != nil || got != 350 {
		t.Errorf("AddCents = %d, %v", got, err)
	}
	if _, err := AddCents(MaxCents, 1); !errors.Is(err, ErrAmountOutOfRange) {
		t.Errorf("AddCents over max: %v", err)
	}
}

func TestParseOptionalCents(t *testing.T) {
	if c, err := ParseOptionalCents(""); err != nil || c != 0 {
		t.Errorf("ParseOptionalCents(\"\") = %d, %v", c, err)
	}
	if c, err := ParseOptionalCents("9.99"); err != nil || c != 999 {
		t.Errorf("ParseOptionalCents(9.99) = %d, %v", c, err)
	}
}

func TestFormatCents(t *testing.T) {
	testCases := map[int64]string{
		0:      "0.00",
		1:      "0.01",
		125000: "1250.00",
		-350:   "-3.50",
	}
	for in, want := range testCases {
		if got := FormatCents(in); got != want {
			t.Errorf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}
