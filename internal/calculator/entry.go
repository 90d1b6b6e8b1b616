package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

// FreshStrategy returns the starting state for a strategy kind, derived only
// from the participant list. Switching kinds back and forth while entering an
// expense should call this each time instead of converting the previous
// strategy, so no rounding carries over between kinds.
func FreshStrategy(kind Kind, participants []Participant) (Strategy, error) {
	if err := checkParticipants(participants); err != nil {
		return nil, err
	}

	switch kind {
	case KindEqual:
		return Equal{}, nil
	case KindPercentage:
		return Percentage{Weights: evenPercentages(participants, hundred)}, nil
	case KindShares:
		weights := make(map[string]int64, len(participants))
		for _, p := range participants {
			weights[p.ID] = 1
		}
		return Shares{Weights: weights}, nil
	case KindAdjustment:
		return Adjustment{Deltas: map[string]money.Amount{}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidStrategy, kind)
	}
}

// RebalancePercentages keeps the percentages of touched participants and
// spreads whatever is left of 100 evenly over the untouched ones. When the
// touched values already exceed 100 the untouched participants get 0 and the
// result will not reconcile.
func RebalancePercentages(participants []Participant, weights map[string]decimal.Decimal, touched map[string]bool) (map[string]decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	index, err := indexOf(participants)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(participants))
	remaining := hundred
	var untouched []Participant
	for id := range touched {
		if _, ok := index[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParticipant, id)
		}
	}
	for _, p := range participants {
		if !touched[p.ID] {
			untouched = append(untouched, p)
			continue
		}
		w := weights[p.ID]
		if w.IsNegative() {
			return nil, fmt.Errorf("%w: percentage for %q cannot be negative", ErrInvalidStrategy, p.ID)
		}
		out[p.ID] = w
		remaining = remaining.Sub(w)
	}

	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	for id, w := range evenPercentages(untouched, remaining) {
		out[id] = w
	}
	return out, nil
}

// evenPercentages splits pool into 2-decimal percentages; the hundredths left
// over go to the first participants one at a time.
func evenPercentages(participants []Participant, pool decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(participants))
	if len(participants) == 0 {
		return out
	}
	units := pool.Shift(2).Truncate(0).IntPart()
	for i, u := range equalShares(units, len(participants)) {
		out[participants[i].ID] = decimal.New(u, -2)
	}
	return out
}
