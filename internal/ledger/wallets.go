package ledger

import (
	"strings"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// Epsilon is the smallest amount treated as non-zero when comparing balances.
var Epsilon = decimal.RequireFromString("0.009")

// CurrencyAmount is an amount tagged with its currency.
type CurrencyAmount struct {
	Amount   decimal.Decimal
	Currency model.Currency
}

// WalletBalance is the derived balance of one wallet.
type WalletBalance struct {
	// ByCurrency holds the literal amount moved in each currency.
	ByCurrency map[model.Currency]decimal.Decimal
	// Dominant is the largest non-zero native amount, a display hint only.
	Dominant *CurrencyAmount
	// Wallet is the first-seen spelling of the wallet name.
	Wallet     string
	BaseAmount decimal.Decimal
	currencies []model.Currency
	// Active is false for wallets that are archived or no longer configured.
	Active bool
}

func newWalletBalance(name string) *WalletBalance {
	return &WalletBalance{
		Wallet:     name,
		BaseAmount: decimal.Zero,
		ByCurrency: make(map[model.Currency]decimal.Decimal),
	}
}

// Native returns the amount held in currency.
func (w *WalletBalance) Native(currency model.Currency) decimal.Decimal {
	if amount, ok := w.ByCurrency[currency]; ok {
		return amount
	}
	return decimal.Zero
}

// Currencies lists the currencies the wallet has seen, in first-seen order.
func (w *WalletBalance) Currencies() []model.Currency {
	out := make([]model.Currency, len(w.currencies))
	copy(out, w.currencies)
	return out
}

func (w *WalletBalance) add(base, native decimal.Decimal, currency model.Currency) {
	w.BaseAmount = w.BaseAmount.Add(base)
	current, seen := w.ByCurrency[currency]
	if !seen {
		w.currencies = append(w.currencies, currency)
	}
	w.ByCurrency[currency] = current.Add(native)
}

// pickDominant chooses the largest absolute native amount above Epsilon.
// Ties keep the currency seen first.
func (w *WalletBalance) pickDominant() {
	w.Dominant = nil
	for _, c := range w.currencies {
		amount := w.ByCurrency[c]
		if amount.Abs().LessThanOrEqual(Epsilon) {
			continue
		}
		if w.Dominant == nil || amount.Abs().GreaterThan(w.Dominant.Amount.Abs()) {
			w.Dominant = &CurrencyAmount{Amount: amount, Currency: c}
		}
	}
}

// WalletBalances is an ordered, case-insensitive collection of wallet
// balances. Iteration order is seeded wallets first, then wallets in the
// order they were first referenced.
type WalletBalances struct {
	index   map[string]int
	entries []*WalletBalance
}

func newWalletBalances() *WalletBalances {
	return &WalletBalances{index: make(map[string]int)}
}

// bucket returns the entry for name, creating it when missing.
func (b *WalletBalances) bucket(name string) *WalletBalance {
	key := model.WalletKey(name)
	if i, ok := b.index[key]; ok {
		return b.entries[i]
	}
	entry := newWalletBalance(strings.TrimSpace(name))
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, entry)
	return entry
}

// Get looks a wallet up by name, ignoring case and surrounding whitespace.
func (b *WalletBalances) Get(name string) (*WalletBalance, bool) {
	if b == nil {
		return nil, false
	}
	i, ok := b.index[model.WalletKey(name)]
	if !ok {
		return nil, false
	}
	return b.entries[i], true
}

// List returns the entries in order.
func (b *WalletBalances) List() []*WalletBalance {
	if b == nil {
		return nil
	}
	out := make([]*WalletBalance, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of wallets.
func (b *WalletBalances) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Map returns the entries keyed by their canonical display name.
func (b *WalletBalances) Map() map[string]*WalletBalance {
	out := make(map[string]*WalletBalance, b.Len())
	for _, e := range b.List() {
		out[e.Wallet] = e
	}
	return out
}

// Total sums BaseAmount across all wallets.
func (b *WalletBalances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.List() {
		total = total.Add(e.BaseAmount)
	}
	return total
}

// BuildWalletBalances buckets operations and debts per wallet.
//
// walletNames are the currently configured wallets: each gets an entry even
// without activity and is marked Active. Wallets referenced only by records
// (archived or deleted ones) still get an entry so their history stays
// attributable, but are inactive.
func BuildWalletBalances(walletNames []string, ops []model.Operation, debts []model.Debt, goals []model.Goal, settings *model.Settings) (*WalletBalances, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return nil, err
	}
	return buildWalletBalances(walletNames, ops, debts, NewGoalTitleSet(GoalTitles(goals)), conv), nil
}

func buildWalletBalances(walletNames []string, ops []model.Operation, debts []model.Debt, goals GoalTitleSet, conv *Converter) *WalletBalances {
	balances := newWalletBalances()

	configured := make(map[string]struct{}, len(walletNames))
	for _, name := range walletNames {
		if model.WalletKey(name) == "" {
			continue
		}
		configured[model.WalletKey(name)] = struct{}{}
		balances.bucket(name)
	}

	for _, op := range ops {
		d, ok := deltaFor(op, goals, conv)
		if !ok {
			continue
		}
		balances.bucket(op.Wallet).add(d.base, d.native, d.currency)
	}

	for _, debt := range debts {
		if !movesCash(debt) {
			continue
		}
		currency := conv.Sanitize(debt.Currency)
		base := debtCashEffect(debt, conv.ToBase(debt.Amount, currency))
		native := debtCashEffect(debt, debt.Amount)
		balances.bucket(debt.Wallet).add(base, native, currency)
	}

	for _, entry := range balances.entries {
		entry.pickDominant()
		_, entry.Active = configured[model.WalletKey(entry.Wallet)]
	}

	return balances
}
