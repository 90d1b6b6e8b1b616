package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// AuthenticatedProcedures lists the procedures that need a signed-in caller.
// Everything else accepts anonymous calls.
var AuthenticatedProcedures = []string{
	api.GroupServiceCreateGroupProcedure,
	api.GroupServiceUpdateGroupProcedure,
	api.GroupServiceDeleteGroupProcedure,
	api.ExpenseServiceCreateExpenseProcedure,
	api.ExpenseServiceUpdateExpenseProcedure,
	api.ExpenseServiceDeleteExpenseProcedure,
	api.SettlementServiceCreateSettlementProcedure,
	api.SettlementServiceDeleteSettlementProcedure,
	api.AuthServiceGetCurrentUserProcedure,
}

// ErrInvalidGroup is returned for malformed group member lists.
var ErrInvalidGroup = errors.New("invalid group")

// groupBalance loads every expense and settlement of a group and folds them
// into member balances, using members as the member list.
func groupBalance(ctx context.Context, store storage.Store, groupID string, members []models.Member) (*calculator.GroupBalance, error) {
	expenses, err := store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	settlements, err := store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	calcExpenses := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		calcExpenses[i] = expenseForBalance(e)
	}
	calcSettlements := make([]calculator.Settlement, len(settlements))
	for i, s := range settlements {
		calcSettlements[i] = calculator.Settlement{FromID: s.FromID, ToID: s.ToID, Amount: s.Amount}
	}

	return calculator.AggregateGroup(calcExpenses, calcSettlements, membersToParticipants(members))
}

// validateMembers checks a member list has at least one entry and unique, non-empty IDs.
func validateMembers(members []models.Member) error {
	if len(members) == 0 {
		return fmt.Errorf("%w: at least one member is required", ErrInvalidGroup)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m.ID == "" {
			return fmt.Errorf("%w: member ID cannot be empty", ErrInvalidGroup)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate member %q", ErrInvalidGroup, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// requireMember fails with ErrUnknownParticipant when id is not in the group.
func requireMember(group *models.Group, role, id string) error {
	if !group.HasMember(id) {
		return fmt.Errorf("%w: %s %q is not a member of group %s", calculator.ErrUnknownParticipant, role, id, group.ID)
	}
	return nil
}
