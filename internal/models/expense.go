package models

import "github.com/mmynk/splitledger/internal/money"

// SplitParams are the inputs a split was computed from. Only the field that
// matches SplitType is used.
type SplitParams struct {
	// Percentages maps member ID to a decimal percent string ("33.33").
	Percentages map[string]string `json:"percentages,omitempty"`

	// Shares maps member ID to an integer share count.
	Shares map[string]int64 `json:"shares,omitempty"`

	// Adjustments maps member ID to a signed amount in minor units.
	Adjustments map[string]int64 `json:"adjustments,omitempty"`
}

// ExpenseShare is one participant's portion of an expense.
type ExpenseShare struct {
	ParticipantID string
	Amount        money.Amount
}

// Expense is an amount paid by one group member and split among participants.
// It is immutable apart from an explicit edit, which recomputes Shares.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is a free-form label ("Groceries at Lidl").
	Description string

	// Category is an optional category name ("food", "rent").
	Category string

	// PayerID is the member who paid.
	PayerID string

	// Total is the full amount paid.
	Total money.Amount

	// SplitType is the calculator kind: EQUAL, PERCENTAGE, SHARES or ADJUSTMENT.
	SplitType string

	// SplitParams are the user-entered strategy inputs.
	SplitParams SplitParams

	// Shares are the computed amounts, in participant order.
	Shares []ExpenseShare

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64
}

// ParticipantIDs returns the IDs of everyone sharing the expense, in order.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, len(e.Shares))
	for i, s := range e.Shares {
		ids[i] = s.ParticipantID
	}
	return ids
}
