package model

import (
	"strings"
	"time"
)

// Wallet is a named place money is kept: a cash box, a bank account, a card.
type Wallet struct {
	CreatedAt time.Time
	Name      string
	ID        int64
	Archived  bool
}

// WalletKey is the identity used when comparing wallet names: trimmed and
// case-folded.
func WalletKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameWallet reports whether two display names refer to the same wallet.
func SameWallet(a, b string) bool {
	return WalletKey(a) == WalletKey(b)
}
