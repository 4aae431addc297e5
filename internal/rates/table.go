package rates

import (
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// Table is a set of rates quoted against Base: Rates[c] is the number of
// Base units one unit of c buys.
type Table struct {
	FetchedAt time.Time                          `json:"fetched_at"`
	Rates     map[model.Currency]decimal.Decimal `json:"rates"`
	Base      model.Currency                     `json:"base"`
}

// Apply returns settings quoted against the table's base. Rates in the table
// replace the known ones; currencies the table does not quote keep their
// last known rate, converted to the new base.
func (t *Table) Apply(settings model.Settings) model.Settings {
	merged := settings.Rebase(t.Base)
	for c, r := range t.Rates {
		merged.Rates[c] = r
	}
	merged.Normalize()
	return merged
}
