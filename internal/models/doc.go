// Package models defines the core domain models for duitsplit.
//
// The domain is a shared-bill ledger:
//   - User: a profile keyed by the external principal ID
//   - Friendship: a request/accept edge gating who can share bills
//   - Bill: a shared expense event owned by its creator
//   - Expense: a single cost item within a bill
//   - Split: one participant's share of an expense
//   - Settlement: the aggregated balance a payer owes the bill creator
//
// Users are identified everywhere by the opaque principal ID supplied by
// the external identity provider; the backend never mints its own user
// IDs. Bills, expenses, friendships and settlements use integer rowids
// so orderings with "ties broken by row id" are well defined.
//
// Monetary amounts are float64 rounded to 2 decimal places at the edges
// (settlement generation, aggregation views). Currency is a free-text
// code defaulting to "RM".
package models
