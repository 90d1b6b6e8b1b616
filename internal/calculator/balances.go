package calculator

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// Expense is an expense with the information needed for balance calculations.
type Expense struct {
	ID          string
	Description string
	Category    string
	PayerID     string
	Total       money.Amount
	CreatedAt   time.Time
	Split       *SplitResult
}

// Settlement is a payment from one member to another that clears debt.
type Settlement struct {
	FromID string // debtor settling up
	ToID   string // creditor being paid
	Amount money.Amount
}

// MemberBalance is the balance information for one group member.
type MemberBalance struct {
	ParticipantID string
	Net           money.Amount // positive = owed money, negative = owes money
	Paid          money.Amount // total paid across expenses and settlements
	Owed          money.Amount // total this member's shares and settlements received
}

// GroupBalance holds the net position of every group member, in member order.
type GroupBalance struct {
	Currency string
	Members  []MemberBalance
}

// Net returns a member's net balance.
func (b *GroupBalance) Net(participantID string) (money.Amount, bool) {
	for _, m := range b.Members {
		if m.ParticipantID == participantID {
			return m.Net, true
		}
	}
	return money.Amount{}, false
}

// Sum adds all net balances. It is zero for any balance built by this package.
func (b *GroupBalance) Sum() money.Amount {
	sum := money.Zero(b.Currency)
	for _, m := range b.Members {
		sum.Minor += m.Net.Minor
	}
	return sum
}

// DebtEdge is a debt from one member to another.
type DebtEdge struct {
	From   string // member who owes
	To     string // member who is owed
	Amount money.Amount
}

// AggregateBalances folds expenses into net member balances.
//
// For each expense the payer gains (total - own share) and every other
// participant loses their share. Any reference to a non-member fails with
// ErrUnknownParticipant rather than being skipped, since skipping would break
// the zero-sum property.
func AggregateBalances(expenses []Expense, members []Participant) (*GroupBalance, error) {
	return AggregateGroup(expenses, nil, members)
}

// AggregateGroup is AggregateBalances plus settlements: the member who paid a
// settlement gains its amount and the receiver loses it.
func AggregateGroup(expenses []Expense, settlements []Settlement, members []Participant) (*GroupBalance, error) {
	index, err := indexOf(members)
	if err != nil {
		return nil, err
	}

	cur, err := groupCurrency(expenses, settlements)
	if err != nil {
		return nil, err
	}

	paid := make([]int64, len(members))
	owed := make([]int64, len(members))

	member := func(id, role string) (int, error) {
		i, ok := index[id]
		if !ok {
			return 0, fmt.Errorf("%w: %s %q is not a group member", ErrUnknownParticipant, role, id)
		}
		return i, nil
	}

	for _, e := range expenses {
		if e.Split == nil {
			return nil, fmt.Errorf("expense %s: %w: no split", e.ID, ErrUnreconciled)
		}
		payer, err := member(e.PayerID, "payer")
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if e.Split.Total.Currency != e.Total.Currency {
			return nil, fmt.Errorf("expense %s: %w: split in %s, total in %s", e.ID, money.ErrCurrencyMismatch, e.Split.Total.Currency, e.Total.Currency)
		}
		if status := ValidateSplit(e.Split, e.Total); status != Valid {
			return nil, fmt.Errorf("expense %s: %w: shares sum to %s, total is %s", e.ID, ErrUnreconciled, e.Split.Sum(), e.Total)
		}

		if paid[payer], err = money.AddMinor(paid[payer], e.Total.Minor); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		for _, s := range e.Split.Shares {
			i, err := member(s.ParticipantID, "participant")
			if err != nil {
				return nil, fmt.Errorf("expense %s: %w", e.ID, err)
			}
			if owed[i], err = money.AddMinor(owed[i], s.Amount.Minor); err != nil {
				return nil, fmt.Errorf("expense %s: %w", e.ID, err)
			}
		}
	}

	for _, s := range settlements {
		from, err := member(s.FromID, "settlement payer")
		if err != nil {
			return nil, err
		}
		to, err := member(s.ToID, "settlement receiver")
		if err != nil {
			return nil, err
		}
		if paid[from], err = money.AddMinor(paid[from], s.Amount.Minor); err != nil {
			return nil, fmt.Errorf("settlement: %w", err)
		}
		if owed[to], err = money.AddMinor(owed[to], s.Amount.Minor); err != nil {
			return nil, fmt.Errorf("settlement: %w", err)
		}
	}

	balance := &GroupBalance{Currency: cur, Members: make([]MemberBalance, len(members))}
	for i, m := range members {
		net, err := money.SubMinor(paid[i], owed[i])
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", m.ID, err)
		}
		balance.Members[i] = MemberBalance{
			ParticipantID: m.ID,
			Net:           money.New(net, cur),
			Paid:          money.New(paid[i], cur),
			Owed:          money.New(owed[i], cur),
		}
	}
	return balance, nil
}

func groupCurrency(expenses []Expense, settlements []Settlement) (string, error) {
	cur := ""
	check := func(c string) error {
		if c == "" {
			return nil
		}
		if cur == "" {
			cur = c
			return nil
		}
		if c != cur {
			return fmt.Errorf("%w: group mixes %s and %s", money.ErrCurrencyMismatch, cur, c)
		}
		return nil
	}
	for _, e := range expenses {
		if err := check(e.Total.Currency); err != nil {
			return "", err
		}
	}
	for _, s := range settlements {
		if err := check(s.Amount.Currency); err != nil {
			return "", err
		}
	}
	return cur, nil
}

// SimplifyDebts turns net balances into a short list of payments.
// Largest debts are matched with largest credits; ties break on participant ID
// so the output is deterministic.
func SimplifyDebts(balance *GroupBalance) []DebtEdge {
	type entry struct {
		id     string
		amount int64
	}
	var creditors, debtors []entry
	for _, m := range balance.Members {
		switch {
		case m.Net.Minor > 0:
			creditors = append(creditors, entry{m.ParticipantID, m.Net.Minor})
		case m.Net.Minor < 0:
			debtors = append(debtors, entry{m.ParticipantID, -m.Net.Minor})
		}
	}
	byAmount := func(a, b entry) int {
		if c := cmp.Compare(b.amount, a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	}
	slices.SortFunc(creditors, byAmount)
	slices.SortFunc(debtors, byAmount)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		edges = append(edges, DebtEdge{
			From:   debtors[i].id,
			To:     creditors[j].id,
			Amount: money.New(amount, balance.Currency),
		})

		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	return edges
}
