// Package ledger derives monetary balances from raw ledger records.
//
// Everything here is a pure function of its inputs: callers load a snapshot of
// operations, debts, goals and settings, and the package returns freshly
// allocated results without touching storage or mutating the snapshot. It is
// safe to call concurrently.
//
// The pipeline is:
//
//	Settings ──► Converter ──┬─► SummarizeDebts ──────┐
//	                         └─► SummarizeOperations ─┴─► BuildWalletBalances
//
// All amounts are shopspring decimals. Results are expressed in the settings'
// base currency unless a field says otherwise.
package ledger
