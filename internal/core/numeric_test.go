package core

import (
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"0", 0, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{".5", 50, true},
		{"1.005", 101, true}, // half-up
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestParseOrZero(t *testing.T) {
	if got := ParseAmountOrZero("12.5"); got.Cents != 1250 {
		t.Fatalf("amount = %d, want 1250", got.Cents)
	}
	for _, in := range []EnteredNumber{"", "n/a", "-3", "1.2.3"} {
		if got := ParseAmountOrZero(in); got.Cents != 0 {
			t.Fatalf("amount(%q) = %d, want 0", in, got.Cents)
		}
	}

	pages := map[EnteredNumber]int64{
		"10":   10,
		" 4 ":  4,
		"2.9":  2,
		"":     0,
		"-2":   0,
		"lots": 0,
		"NaN":  0,
		"Inf":  0,
	}
	for in, want := range pages {
		if got := ParsePagesOrZero(in); got != want {
			t.Fatalf("pages(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{0: "0.00", 5: "0.05", 1234: "12.34", -250: "-2.50"}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyAddSaturates(t *testing.T) {
	cases := []struct {
		name string
		a, b int64
		want int64
	}{
		{"plain", 1050, 25, 1075},
		{"max plus one", math.MaxInt64, 1, math.MaxInt64},
		{"two huge", math.MaxInt64 - 5, math.MaxInt64 - 5, math.MaxInt64},
		{"min minus one", math.MinInt64, -1, math.MinInt64},
		{"mixed signs", math.MaxInt64, -1, math.MaxInt64 - 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := (Money{Cents: c.a}).Add(Money{Cents: c.b}); got.Cents != c.want {
				t.Errorf("Add = %d, want %d", got.Cents, c.want)
			}
		})
	}
}

func TestSummarizeHugeExpensesStayNonNegative(t *testing.T) {
	records := []DailyRecord{
		{ID: "a", Date: "2024-03-01", Expense: "90000000000000000"},
		{ID: "b", Date: "2024-03-02", Expense: "90000000000000000"},
	}
	s := Summarize(records, "2024-03")
	if s.TotalExpense.Cents < 0 {
		t.Fatalf("TotalExpense = %d, want non-negative", s.TotalExpense.Cents)
	}
}
