// Package core holds the day-record model, the uniqueness check and the
// month analytics.
//
// This file owns the parse-or-zero policy for user-entered numbers. Every
// aggregate goes through ParseAmountOrZero or ParsePagesOrZero so a bad
// field contributes zero instead of failing.
package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

// ParseDecimalToCents converts a non-negative decimal string to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted and the third
// decimal place is rounded half-up. Signs, exponents and any other
// characters are rejected.
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,346") -> 1235, nil
//	ParseDecimalToCents("0")      -> 0, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// leave room for the cents and one rounding step
	const maxSafe = (math.MaxInt64 - 100) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return iv*100 + frac, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// ParseAmountOrZero returns the amount in cents, or zero when the text is
// blank or does not parse.
func ParseAmountOrZero(n EnteredNumber) Money {
	cents, err := ParseDecimalToCents(string(n))
	if err != nil {
		return Money{}
	}
	return Money{Cents: cents}
}

// ParsePagesOrZero returns the whole number of pages. Fractions are
// truncated; blank, negative or unparsable text is zero.
func ParsePagesOrZero(n EnteredNumber) int64 {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int64(math.Floor(f))
}

// Float returns the amount in currency units for display.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals.
func (m Money) String() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Add returns the sum, saturating at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	switch {
	case o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && m.Cents < math.MinInt64-o.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: m.Cents + o.Cents}
}
