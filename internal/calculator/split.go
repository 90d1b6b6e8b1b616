package calculator

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

var (
	ErrInvalidStrategy    = errors.New("invalid split strategy")
	ErrUnreconciled       = errors.New("split does not reconcile with total")
	ErrUnknownParticipant = errors.New("unknown participant")

	ErrNoParticipants       = fmt.Errorf("%w: at least one participant is required", ErrInvalidStrategy)
	ErrDuplicateParticipant = fmt.Errorf("%w: duplicate participant", ErrInvalidStrategy)
)

// percentTolerance is how far percentage weights may drift from 100 and still
// count as reconciled.
var percentTolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Kind identifies a split strategy.
type Kind string

const (
	KindEqual      Kind = "EQUAL"
	KindPercentage Kind = "PERCENTAGE"
	KindShares     Kind = "SHARES"
	KindAdjustment Kind = "ADJUSTMENT"
)

// ParseKind converts a wire value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindEqual, KindPercentage, KindShares, KindAdjustment:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown split type %q", ErrInvalidStrategy, s)
	}
}

// Participant is one person taking part in a split.
type Participant struct {
	ID   string
	Name string
}

// Strategy partitions a total across participants. It is one of Equal,
// Percentage, Shares or Adjustment.
type Strategy interface {
	Kind() Kind
	split(total money.Amount, participants []Participant) (shares []int64, reconciled bool, err error)
}

// Equal divides the total evenly; leftover minor units go to the first participants.
type Equal struct{}

// Percentage gives each participant a percent of the total. Participants
// missing from Weights get 0%.
type Percentage struct {
	Weights map[string]decimal.Decimal
}

// Shares splits proportionally to integer share counts. Participants missing
// from Weights hold zero shares.
type Shares struct {
	Weights map[string]int64
}

// Adjustment starts from an equal split and adds a signed delta per participant.
type Adjustment struct {
	Deltas map[string]money.Amount
}

func (Equal) Kind() Kind      { return KindEqual }
func (Percentage) Kind() Kind { return KindPercentage }
func (Shares) Kind() Kind     { return KindShares }
func (Adjustment) Kind() Kind { return KindAdjustment }

// Share is one participant's portion of a split.
type Share struct {
	ParticipantID string
	Amount        money.Amount
}

// SplitResult is the outcome of applying a strategy. Shares follow the order
// of the participant list. Reconciled is false when user-entered weights or
// deltas do not add up and the engine did not correct them.
type SplitResult struct {
	Kind       Kind
	Total      money.Amount
	Shares     []Share
	Reconciled bool
}

// Amount returns the share for a participant.
func (r *SplitResult) Amount(participantID string) (money.Amount, bool) {
	for _, s := range r.Shares {
		if s.ParticipantID == participantID {
			return s.Amount, true
		}
	}
	return money.Amount{}, false
}

// Sum adds all shares for display. Use ValidateSplit to check a result; Sum
// does not guard against overflow.
func (r *SplitResult) Sum() money.Amount {
	sum := money.Zero(r.Total.Currency)
	for _, s := range r.Shares {
		sum.Minor += s.Amount.Minor
	}
	return sum
}

// Map returns shares keyed by participant ID.
func (r *SplitResult) Map() map[string]money.Amount {
	m := make(map[string]money.Amount, len(r.Shares))
	for _, s := range r.Shares {
		m[s.ParticipantID] = s.Amount
	}
	return m
}

// ComputeSplit applies the strategy to total and participants.
// The result is a pure function of its inputs.
func ComputeSplit(total money.Amount, participants []Participant, strategy Strategy) (*SplitResult, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: no strategy given", ErrInvalidStrategy)
	}
	if err := checkParticipants(participants); err != nil {
		return nil, err
	}

	shares, reconciled, err := strategy.split(total, participants)
	if err != nil {
		return nil, err
	}

	result := &SplitResult{
		Kind:       strategy.Kind(),
		Total:      total,
		Shares:     make([]Share, len(participants)),
		Reconciled: reconciled,
	}
	for i, p := range participants {
		result.Shares[i] = Share{ParticipantID: p.ID, Amount: money.New(shares[i], total.Currency)}
	}
	return result, nil
}

func (Equal) split(total money.Amount, participants []Participant) ([]int64, bool, error) {
	return equalShares(total.Minor, len(participants)), true, nil
}

func (s Percentage) split(total money.Amount, participants []Participant) ([]int64, bool, error) {
	index, err := indexOf(participants)
	if err != nil {
		return nil, false, err
	}

	weights := make([]decimal.Decimal, len(participants))
	sum := decimal.Zero
	for id, w := range s.Weights {
		i, ok := index[id]
		if !ok {
			return nil, false, fmt.Errorf("%w: %q has a percentage but is not a participant", ErrUnknownParticipant, id)
		}
		if w.IsNegative() || w.GreaterThan(hundred) {
			return nil, false, fmt.Errorf("%w: percentage for %q must be between 0 and 100, got %s", ErrInvalidStrategy, id, w)
		}
		weights[i] = w
		sum = sum.Add(w)
	}

	totalDec := decimal.NewFromInt(total.Minor)
	shares := make([]int64, len(participants))
	eligible := make([]bool, len(participants))
	for i, w := range weights {
		shares[i] = totalDec.Mul(w).Div(hundred).Round(0).IntPart()
		eligible[i] = w.IsPositive()
	}

	// Only correct drift when the weights themselves add up; otherwise keep the
	// best-effort shares so the caller can see what the user typed.
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return shares, false, nil
	}
	distributeRemainder(shares, total.Minor, eligible)
	return shares, true, nil
}

func (s Shares) split(total money.Amount, participants []Participant) ([]int64, bool, error) {
	index, err := indexOf(participants)
	if err != nil {
		return nil, false, err
	}

	weights := make([]int64, len(participants))
	var totalShares int64
	for id, w := range s.Weights {
		i, ok := index[id]
		if !ok {
			return nil, false, fmt.Errorf("%w: %q has shares but is not a participant", ErrUnknownParticipant, id)
		}
		if w < 0 {
			return nil, false, fmt.Errorf("%w: shares for %q cannot be negative", ErrInvalidStrategy, id)
		}
		weights[i] = w
		if totalShares, err = money.AddMinor(totalShares, w); err != nil {
			return nil, false, fmt.Errorf("%w: total shares: %w", ErrInvalidStrategy, err)
		}
	}
	if totalShares == 0 {
		return nil, false, fmt.Errorf("%w: total shares must be positive", ErrInvalidStrategy)
	}

	totalDec := decimal.NewFromInt(total.Minor)
	denom := decimal.NewFromInt(totalShares)
	shares := make([]int64, len(participants))
	eligible := make([]bool, len(participants))
	for i, w := range weights {
		shares[i] = totalDec.Mul(decimal.NewFromInt(w)).Div(denom).Round(0).IntPart()
		eligible[i] = w > 0
	}
	distributeRemainder(shares, total.Minor, eligible)
	return shares, true, nil
}

func (s Adjustment) split(total money.Amount, participants []Participant) ([]int64, bool, error) {
	index, err := indexOf(participants)
	if err != nil {
		return nil, false, err
	}

	// Check every delta first, in ID order.
	for _, id := range slices.Sorted(maps.Keys(s.Deltas)) {
		if _, ok := index[id]; !ok {
			return nil, false, fmt.Errorf("%w: %q has an adjustment but is not a participant", ErrUnknownParticipant, id)
		}
		if d := s.Deltas[id]; d.Currency != "" && d.Currency != total.Currency {
			return nil, false, fmt.Errorf("adjustment for %q: %w: %s vs %s", id, money.ErrCurrencyMismatch, d.Currency, total.Currency)
		}
	}

	// Apply them in participant order.
	shares := equalShares(total.Minor, len(participants))
	var deltaSum int64
	for i, p := range participants {
		d, ok := s.Deltas[p.ID]
		if !ok {
			continue
		}
		if shares[i], err = money.AddMinor(shares[i], d.Minor); err != nil {
			return nil, false, fmt.Errorf("%w: adjustment for %q: %w", ErrInvalidStrategy, p.ID, err)
		}
		if deltaSum, err = money.AddMinor(deltaSum, d.Minor); err != nil {
			return nil, false, fmt.Errorf("%w: adjustments: %w", ErrInvalidStrategy, err)
		}
	}
	// Deltas are user-authored; a non-zero sum is reported, never corrected.
	return shares, deltaSum == 0, nil
}

// equalShares truncates total/n and hands the leftover minor units out one
// each in list order.
func equalShares(total int64, n int) []int64 {
	base := total / int64(n)
	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
	}
	eligible := make([]bool, n)
	for i := range eligible {
		eligible[i] = true
	}
	distributeRemainder(shares, total, eligible)
	return shares
}

// distributeRemainder moves shares toward total. Every eligible participant
// gets an equal cut of the remainder, then the leftover minor units go one
// each in list order. The remainder may be negative when rounding overshoots.
// Shares that cannot be summed without overflow are left unchanged.
func distributeRemainder(shares []int64, total int64, eligible []bool) {
	var (
		sum int64
		err error
	)
	for _, s := range shares {
		if sum, err = money.AddMinor(sum, s); err != nil {
			return
		}
	}
	remainder, err := money.SubMinor(total, sum)
	if err != nil || remainder == 0 {
		return
	}

	var order []int
	for i, ok := range eligible {
		if ok {
			order = append(order, i)
		}
	}
	if len(order) == 0 {
		return
	}

	n := int64(len(order))
	cut, leftover := remainder/n, remainder%n
	for _, i := range order {
		shares[i] += cut
	}

	step := int64(1)
	if leftover < 0 {
		step, leftover = -1, -leftover
	}
	for k := int64(0); k < leftover; k++ {
		shares[order[k]] += step
	}
}

func checkParticipants(participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	_, err := indexOf(participants)
	return err
}

func indexOf(participants []Participant) (map[string]int, error) {
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: participant %d has no ID", ErrInvalidStrategy, i)
		}
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, p.ID)
		}
		index[p.ID] = i
	}
	return index, nil
}
