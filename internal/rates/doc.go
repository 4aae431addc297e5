// Package rates keeps the exchange-rate table current.
//
// A Syncer fetches rates for the supported currencies from an HTTP endpoint,
// remembers the last good table in a Cache (Redis when configured), and
// writes the result into the stored settings. When the endpoint is down the
// last known table is used instead, so balances can always be computed.
package rates
