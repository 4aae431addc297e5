// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code from the supported set.
type Currency string

// Supported currencies.
const (
	USD Currency = "USD"
	RUB Currency = "RUB"
	GEL Currency = "GEL"
	EUR Currency = "EUR"
)

// SupportedCurrencies lists every currency the ledger accepts, in display order.
var SupportedCurrencies = []Currency{USD, RUB, GEL, EUR}

// IsSupported reports whether c belongs to the supported set.
func (c Currency) IsSupported() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency validates a free-text currency code.
// Surrounding whitespace and letter case are ignored.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsSupported() {
		return "", false
	}
	return c, true
}

// SanitizeCurrency returns the supported currency named by s, or fallback
// when s is not in the supported set.
func SanitizeCurrency(s string, fallback Currency) Currency {
	if c, ok := ParseCurrency(s); ok {
		return c
	}
	return fallback
}

// Settings is the read-only configuration snapshot a computation runs against.
// Rates holds units of BaseCurrency per one unit of the keyed currency.
type Settings struct {
	UpdatedAt    time.Time
	Rates        map[Currency]decimal.Decimal
	BaseCurrency Currency
}

// DefaultSettings returns settings with USD as base and no foreign rates.
func DefaultSettings() Settings {
	return Settings{
		BaseCurrency: USD,
		Rates:        map[Currency]decimal.Decimal{USD: decimal.NewFromInt(1)},
	}
}

// Normalize enforces the settings invariants in place: the base currency is
// supported, its rate is exactly one, and non-positive or unsupported rates
// are dropped.
func (s *Settings) Normalize() {
	s.BaseCurrency = SanitizeCurrency(string(s.BaseCurrency), USD)

	rates := make(map[Currency]decimal.Decimal, len(s.Rates)+1)
	for c, r := range s.Rates {
		if !c.IsSupported() || !r.IsPositive() {
			continue
		}
		rates[c] = r
	}
	rates[s.BaseCurrency] = decimal.NewFromInt(1)
	s.Rates = rates
}

// Rate returns the configured rate for c and whether one is present.
func (s Settings) Rate(c Currency) (decimal.Decimal, bool) {
	if c == s.BaseCurrency {
		return decimal.NewFromInt(1), true
	}
	r, ok := s.Rates[c]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

// Rebase returns settings quoted against base. Rates are converted through
// the old base; when the new base has no rate, only its own rate is kept.
func (s Settings) Rebase(base Currency) Settings {
	out := Settings{BaseCurrency: base, UpdatedAt: s.UpdatedAt}
	pivot, ok := s.Rate(base)
	if ok {
		out.Rates = make(map[Currency]decimal.Decimal, len(s.Rates)+1)
		out.Rates[s.BaseCurrency] = decimal.NewFromInt(1).DivRound(pivot, 12)
		for c, r := range s.Rates {
			if r.IsPositive() {
				out.Rates[c] = r.DivRound(pivot, 12)
			}
		}
	}
	out.Normalize()
	return out
}
