package ledger

import (
	"errors"
	"log/slog"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// ErrNilSettings is returned by every entry point when no settings snapshot
// is supplied. It is the only hard failure in the package.
var ErrNilSettings = errors.New("ledger: settings are required")

var one = decimal.NewFromInt(1)

// Converter moves amounts between supported currencies and the base currency.
//
// Unsupported currencies are treated as the base currency, and a supported
// currency with no usable rate is converted at 1. Neither case is an error.
type Converter struct {
	rates map[model.Currency]decimal.Decimal
	base  model.Currency
}

// NewConverter snapshots the rate table from settings.
func NewConverter(settings *model.Settings) (*Converter, error) {
	if settings == nil {
		return nil, ErrNilSettings
	}

	base := model.SanitizeCurrency(string(settings.BaseCurrency), model.USD)
	rates := make(map[model.Currency]decimal.Decimal, len(settings.Rates))
	for c, r := range settings.Rates {
		if c.IsSupported() && r.IsPositive() {
			rates[c] = r
		}
	}
	rates[base] = one

	return &Converter{rates: rates, base: base}, nil
}

// Base returns the currency results are expressed in.
func (c *Converter) Base() model.Currency {
	return c.base
}

// Sanitize maps currency onto the supported set, falling back to the base.
func (c *Converter) Sanitize(currency model.Currency) model.Currency {
	return model.SanitizeCurrency(string(currency), c.base)
}

func (c *Converter) rate(currency model.Currency) decimal.Decimal {
	r, ok := c.rates[currency]
	if !ok {
		slog.Debug("no exchange rate, converting at par",
			"currency", currency,
			"base", c.base)
		return one
	}
	return r
}

// ToBase converts amount in currency into the base currency.
func (c *Converter) ToBase(amount decimal.Decimal, currency model.Currency) decimal.Decimal {
	currency = c.Sanitize(currency)
	if currency == c.base {
		return amount
	}
	return amount.Mul(c.rate(currency))
}

// FromBase converts a base-currency amount into currency.
func (c *Converter) FromBase(amount decimal.Decimal, currency model.Currency) decimal.Decimal {
	currency = c.Sanitize(currency)
	if currency == c.base {
		return amount
	}
	return amount.Div(c.rate(currency))
}

// Convert moves amount from one currency to another through the base.
func (c *Converter) Convert(amount decimal.Decimal, from, to model.Currency) decimal.Decimal {
	from = c.Sanitize(from)
	to = c.Sanitize(to)
	if from == to {
		return amount
	}
	return c.FromBase(c.ToBase(amount, from), to)
}

// ToBase is a convenience wrapper around Converter.ToBase.
func ToBase(amount decimal.Decimal, currency model.Currency, settings *model.Settings) (decimal.Decimal, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return decimal.Zero, err
	}
	return conv.ToBase(amount, currency), nil
}

// FromBase is a convenience wrapper around Converter.FromBase.
func FromBase(amount decimal.Decimal, currency model.Currency, settings *model.Settings) (decimal.Decimal, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return decimal.Zero, err
	}
	return conv.FromBase(amount, currency), nil
}
