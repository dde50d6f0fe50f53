// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and rendering them as US dollar strings.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts an optional leading "$", dot decimals (12.34), comma decimals (12,34)
// and thousands separators in either convention (1,234.56 or 1.234,56); the
// last separator is the decimal point. Negative values and garbage are
// rejected; zero is allowed.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("12,34")     -> 12.34
//	ParseAmount("$1,234.56") -> 1234.56
//	ParseAmount("1.234,56")  -> 1234.56
//	ParseAmount("1,234")     -> 1234
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}

	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// 1.234,56: dots group thousands, the comma is the decimal point
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56: commas group thousands
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ",") == 1 && len(s)-strings.LastIndex(s, ",")-1 != 3:
		// 12,34: decimal comma
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	intPart, fracPart := parts[0], ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart != "" {
		intPart += "." + fracPart
	}

	d, err := decimal.NewFromString(intPart)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatUSD renders an amount as "$1,234.56" (negative values as "-$1,234.56").
func FormatUSD(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
