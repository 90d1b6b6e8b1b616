// Package models defines the persisted domain records for Splitledger.
//
// # Models
//
//   - Group: a named set of members sharing one currency
//   - Expense: an amount paid by one member and split across members
//   - Settlement: a payment between members that clears debt
//   - User: a registered account that can sign in and record expenses
//
// Amounts are money.Amount values in integer minor units. Members are
// identified by an opaque ID; for groups of people without accounts the ID
// can simply be the display name.
//
// # Design Principles
//
//  1. Avoid circular references: relationships use ID strings, not pointers.
//  2. Records hold what was entered; derived values (balances, debts) are
//     recomputed by the calculator package and never stored.
//  3. An expense keeps the strategy it was split with, so editing it
//     recomputes the split from the same inputs.
package models
