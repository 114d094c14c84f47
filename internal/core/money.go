// Package core provides the domain types and currency formatting.
//
// This file contains the currency formatter used for the category breakdown.
// Amounts are whole currency units; no fractional part is ever rendered.
package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencyFormatter renders whole amounts as locale-grouped currency strings,
// e.g. 1234 -> "$1,234" for en-US.
type CurrencyFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewCurrencyFormatter builds a formatter for a BCP 47 locale and a currency symbol.
func NewCurrencyFormatter(locale, symbol string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &CurrencyFormatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}, nil
}

// DefaultCurrencyFormatter formats dollars in en-US.
func DefaultCurrencyFormatter() *CurrencyFormatter {
	return &CurrencyFormatter{
		printer: message.NewPrinter(language.AmericanEnglish),
		symbol:  "$",
	}
}

// Format renders an amount with zero decimal places.
func (f *CurrencyFormatter) Format(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := f.symbol + f.printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
	if neg {
		return "-" + s
	}
	return s
}
