package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService records expenses against groups. Every create and update
// recomputes the split and refuses results that do not reconcile.
type ExpenseService struct {
	store   storage.Store
	metrics *middleware.Metrics
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, metrics *middleware.Metrics) *ExpenseService {
	return &ExpenseService{store: store, metrics: metrics}
}

// expenseInput is the part of a create or update request that drives the split.
type expenseInput struct {
	description    string
	category       string
	payerID        string
	total          api.Money
	participantIDs []string
	strategy       api.Strategy
}

// split validates input against the group and computes the shares.
func (s *ExpenseService) split(group *models.Group, in expenseInput, expense *models.Expense) (calculator.ValidationStatus, error) {
	if in.payerID == "" {
		return "", invalidArgument("payer_id required")
	}
	if err := requireMember(group, "payer", in.payerID); err != nil {
		return "", err
	}

	total, err := parseMoney(in.total, group.Currency)
	if err != nil {
		return "", err
	}
	if total.Currency != group.Currency {
		return "", fmt.Errorf("%w: group uses %s, expense is in %s", money.ErrCurrencyMismatch, group.Currency, total.Currency)
	}

	participants := membersToParticipants(group.Members)
	if len(in.participantIDs) > 0 {
		participants = make([]calculator.Participant, len(in.participantIDs))
		for i, id := range in.participantIDs {
			if err := requireMember(group, "participant", id); err != nil {
				return "", err
			}
			participants[i] = calculator.Participant{ID: id}
		}
	}

	strategy, params, err := strategyFromAPI(in.strategy, total.Currency)
	if err != nil {
		return "", err
	}
	result, err := calculator.ComputeSplit(total, participants, strategy)
	if err != nil {
		return "", err
	}
	status := calculator.ValidateSplit(result, total)
	s.metrics.ObserveSplit(string(result.Kind), string(status))
	if err := status.Err(); err != nil {
		return status, fmt.Errorf("%w: shares sum to %s, total is %s", err, result.Sum(), total)
	}

	expense.Description = strings.TrimSpace(in.description)
	expense.Category = strings.TrimSpace(in.category)
	expense.PayerID = in.payerID
	expense.Total = total
	expense.SplitType = string(result.Kind)
	expense.SplitParams = params
	expense.Shares = make([]models.ExpenseShare, len(result.Shares))
	for i, share := range result.Shares {
		expense.Shares[i] = models.ExpenseShare{ParticipantID: share.ParticipantID, Amount: share.Amount}
	}
	return status, nil
}

// CreateExpense records a new expense in a group.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"total", req.Msg.Total.Amount,
		"kind", req.Msg.Strategy.Kind,
	)

	if req.Msg.GroupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	expense := &models.Expense{GroupID: group.ID, CreatedBy: middleware.GetUserID(ctx)}
	status, err := s.split(group, expenseInput{
		description:    req.Msg.Description,
		category:       req.Msg.Category,
		payerID:        req.Msg.PayerID,
		total:          req.Msg.Total,
		participantIDs: req.Msg.ParticipantIDs,
		strategy:       req.Msg.Strategy,
	}, expense)
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID, "status", status)

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: expenseToAPI(expense),
		Status:  string(status),
	}), nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// ListExpenses returns every expense of a group, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if req.Msg.GroupID == "" {
		return nil, invalidArgument("group_id required")
	}
	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToAPI(e)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense edits an expense and recomputes its split from the new inputs.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"kind", req.Msg.Strategy.Kind,
	)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	status, err := s.split(group, expenseInput{
		description:    req.Msg.Description,
		category:       req.Msg.Category,
		payerID:        req.Msg.PayerID,
		total:          req.Msg.Total,
		participantIDs: req.Msg.ParticipantIDs,
		strategy:       req.Msg.Strategy,
	}, expense)
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "status", status)

	return connect.NewResponse(&api.UpdateExpenseResponse{
		Expense: expenseToAPI(expense),
		Status:  string(status),
	}), nil
}

// DeleteExpense removes an expense by ID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
