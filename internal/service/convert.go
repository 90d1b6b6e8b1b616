package service

import (
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, calculator.ErrUnreconciled), errors.Is(err, storage.ErrNotMember):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrInvalidStrategy),
		errors.Is(err, calculator.ErrUnknownParticipant),
		errors.Is(err, ErrInvalidGroup),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrTooPrecise),
		errors.Is(err, money.ErrUnknownCurrency),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrOverflow):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func moneyToAPI(a money.Amount) api.Money {
	return api.Money{Amount: a.String(), Currency: a.Currency}
}

// parseMoney reads a wire amount. An empty currency falls back to fallback.
func parseMoney(m api.Money, fallback string) (money.Amount, error) {
	cur := m.Currency
	if cur == "" {
		cur = fallback
	}
	return money.Parse(m.Amount, cur)
}

func participantsFromAPI(in []api.Participant) []calculator.Participant {
	out := make([]calculator.Participant, len(in))
	for i, p := range in {
		out[i] = calculator.Participant{ID: p.ID, Name: p.Name}
	}
	return out
}

func membersToParticipants(members []models.Member) []calculator.Participant {
	out := make([]calculator.Participant, len(members))
	for i, m := range members {
		out[i] = calculator.Participant{ID: m.ID, Name: m.Name}
	}
	return out
}

// strategyFromAPI builds the calculator strategy and the parameters to store
// with an expense. Adjustments are read in the total's currency.
func strategyFromAPI(s api.Strategy, cur string) (calculator.Strategy, models.SplitParams, error) {
	kind, err := calculator.ParseKind(s.Kind)
	if err != nil {
		return nil, models.SplitParams{}, err
	}

	switch kind {
	case calculator.KindEqual:
		return calculator.Equal{}, models.SplitParams{}, nil

	case calculator.KindPercentage:
		weights := make(map[string]decimal.Decimal, len(s.Percentages))
		for id, v := range s.Percentages {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, models.SplitParams{}, fmt.Errorf("%w: percentage %q for %s", calculator.ErrInvalidStrategy, v, id)
			}
			weights[id] = d
		}
		return calculator.Percentage{Weights: weights}, models.SplitParams{Percentages: s.Percentages}, nil

	case calculator.KindShares:
		return calculator.Shares{Weights: s.Shares}, models.SplitParams{Shares: s.Shares}, nil

	default: // calculator.KindAdjustment
		deltas := make(map[string]money.Amount, len(s.Adjustments))
		minor := make(map[string]int64, len(s.Adjustments))
		for id, v := range s.Adjustments {
			a, err := money.Parse(v, cur)
			if err != nil {
				return nil, models.SplitParams{}, fmt.Errorf("adjustment for %s: %w", id, err)
			}
			deltas[id] = a
			minor[id] = a.Minor
		}
		return calculator.Adjustment{Deltas: deltas}, models.SplitParams{Adjustments: minor}, nil
	}
}

// strategyToAPI renders a calculator strategy for the wire.
func strategyToAPI(s calculator.Strategy) api.Strategy {
	out := api.Strategy{Kind: string(s.Kind())}
	switch s := s.(type) {
	case calculator.Percentage:
		out.Percentages = make(map[string]string, len(s.Weights))
		for id, w := range s.Weights {
			out.Percentages[id] = w.String()
		}
	case calculator.Shares:
		out.Shares = s.Weights
	case calculator.Adjustment:
		out.Adjustments = make(map[string]string, len(s.Deltas))
		for id, d := range s.Deltas {
			out.Adjustments[id] = d.String()
		}
	}
	return out
}

// storedStrategyToAPI renders the parameters saved with an expense.
func storedStrategyToAPI(kind string, params models.SplitParams, cur string) api.Strategy {
	out := api.Strategy{Kind: kind, Percentages: params.Percentages, Shares: params.Shares}
	if len(params.Adjustments) > 0 {
		out.Adjustments = make(map[string]string, len(params.Adjustments))
		for id, minor := range params.Adjustments {
			out.Adjustments[id] = money.New(minor, cur).String()
		}
	}
	return out
}

func sharesToAPI(shares []calculator.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{ParticipantID: s.ParticipantID, Amount: moneyToAPI(s.Amount)}
	}
	return out
}

func resultToAPI(r *calculator.SplitResult) api.SplitResult {
	return api.SplitResult{
		Kind:       string(r.Kind),
		Total:      moneyToAPI(r.Total),
		Shares:     sharesToAPI(r.Shares),
		Reconciled: r.Reconciled,
	}
}

func resultFromAPI(r api.SplitResult, cur string) (*calculator.SplitResult, error) {
	total, err := parseMoney(r.Total, cur)
	if err != nil {
		return nil, err
	}
	out := &calculator.SplitResult{
		Kind:       calculator.Kind(r.Kind),
		Total:      total,
		Shares:     make([]calculator.Share, len(r.Shares)),
		Reconciled: r.Reconciled,
	}
	for i, s := range r.Shares {
		amount, err := parseMoney(s.Amount, cur)
		if err != nil {
			return nil, fmt.Errorf("share for %s: %w", s.ParticipantID, err)
		}
		out.Shares[i] = calculator.Share{ParticipantID: s.ParticipantID, Amount: amount}
	}
	return out, nil
}

func groupToAPI(g *models.Group) api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = api.Member{ID: m.ID, Name: m.Name}
	}
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

func membersFromAPI(in []api.Member) []models.Member {
	out := make([]models.Member, len(in))
	for i, m := range in {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		out[i] = models.Member{ID: m.ID, Name: name}
	}
	return out
}

func expenseToAPI(e *models.Expense) api.Expense {
	shares := make([]api.Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = api.Share{ParticipantID: s.ParticipantID, Amount: moneyToAPI(s.Amount)}
	}
	return api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Category:    e.Category,
		PayerID:     e.PayerID,
		Total:       moneyToAPI(e.Total),
		Strategy:    storedStrategyToAPI(e.SplitType, e.SplitParams, e.Total.Currency),
		Shares:      shares,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// expenseForBalance converts a stored expense into calculator input.
func expenseForBalance(e *models.Expense) calculator.Expense {
	shares := make([]calculator.Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = calculator.Share{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	return calculator.Expense{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		PayerID:     e.PayerID,
		Total:       e.Total,
		CreatedAt:   time.Unix(e.CreatedAt, 0),
		Split: &calculator.SplitResult{
			Kind:       calculator.Kind(e.SplitType),
			Total:      e.Total,
			Shares:     shares,
			Reconciled: true,
		},
	}
}

func settlementToAPI(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		FromID:    s.FromID,
		ToID:      s.ToID,
		Amount:    moneyToAPI(s.Amount),
		Note:      s.Note,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func userToAPI(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
