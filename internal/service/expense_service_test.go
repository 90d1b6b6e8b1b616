package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateExpense_And_GetExpense(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createRoommates(t, c)

	createResp, err := c.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:        group.ID,
		Description:    "Dinner",
		Category:       "food",
		PayerID:        "bob",
		Total:          usd("100.00"),
		ParticipantIDs: []string{"alice", "bob"},
		Strategy:       api.Strategy{Kind: "ADJUSTMENT", Adjustments: map[string]string{"alice": "5", "bob": "-5"}},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if createResp.Msg.Status != "VALID" {
		t.Errorf("status = %s, want VALID", createResp.Msg.Status)
	}

	expense := createResp.Msg.Expense
	if expense.ID == "" || expense.CreatedBy != testUserID {
		t.Errorf("unexpected expense metadata: %+v", expense)
	}

	getResp, err := c.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: expense.ID}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	got := getResp.Msg.Expense
	if got.Description != "Dinner" || got.Category != "food" || got.PayerID != "bob" {
		t.Errorf("unexpected expense: %+v", got)
	}
	shares := shareAmounts(got.Shares)
	if len(got.Shares) != 2 || shares["alice"] != "55.00" || shares["bob"] != "45.00" {
		t.Errorf("unexpected shares: %+v", got.Shares)
	}
	if got.Strategy.Kind != "ADJUSTMENT" || got.Strategy.Adjustments["bob"] != "-5.00" {
		t.Errorf("strategy not restored: %+v", got.Strategy)
	}
}

func TestCreateExpense_DefaultsToAllMembers(t *testing.T) {
	c := setupTestServer(t)
	group := createRoommates(t, c)

	resp, err := c.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:  group.ID,
		PayerID:  "alice",
		Total:    usd("100.00"),
		Strategy: api.Strategy{Kind: "EQUAL"},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	want := []api.Share{
		{ParticipantID: "alice", Amount: usd("33.34")},
		{ParticipantID: "bob", Amount: usd("33.33")},
		{ParticipantID: "charlie", Amount: usd("33.33")},
	}
	for i, w := range want {
		if resp.Msg.Expense.Shares[i] != w {
			t.Errorf("share %d = %+v, want %+v", i, resp.Msg.Expense.Shares[i], w)
		}
	}
}

func TestCreateExpense_Rejected(t *testing.T) {
	c := setupTestServer(t)
	group := createRoommates(t, c)

	tests := []struct {
		name string
		req  *api.CreateExpenseRequest
		code connect.Code
	}{
		{
			name: "percentages do not add up",
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, PayerID: "alice", Total: usd("100.00"),
				Strategy: api.Strategy{Kind: "PERCENTAGE", Percentages: map[string]string{"alice": "50", "bob": "40"}},
			},
			code: connect.CodeFailedPrecondition,
		},
		{
			name: "adjustments do not net to zero",
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, PayerID: "alice", Total: usd("100.00"),
				Strategy: api.Strategy{Kind: "ADJUSTMENT", Adjustments: map[string]string{"alice": "5"}},
			},
			code: connect.CodeFailedPrecondition,
		},
		{
			name: "payer outside the group",
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, PayerID: "mallory", Total: usd("10.00"), Strategy: api.Strategy{Kind: "EQUAL"},
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "participant outside the group",
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, PayerID: "alice", Total: usd("10.00"),
				ParticipantIDs: []string{"alice", "mallory"}, Strategy: api.Strategy{Kind: "EQUAL"},
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "currency differs from the group",
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, PayerID: "alice", Total: api.Money{Amount: "10.00", Currency: "EUR"},
				Strategy: api.Strategy{Kind: "EQUAL"},
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "missing payer",
			req: &api.CreateExpenseRequest{
				GroupID: group.ID, Total: usd("10.00"), Strategy: api.Strategy{Kind: "EQUAL"},
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown group",
			req: &api.CreateExpenseRequest{
				GroupID: "nonexistent-id", PayerID: "alice", Total: usd("10.00"), Strategy: api.Strategy{Kind: "EQUAL"},
			},
			code: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.expenses.CreateExpense(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.code)
		})
	}

	resp, err := c.expenses.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 0 {
		t.Errorf("rejected expenses were stored: %+v", resp.Msg.Expenses)
	}
}

func TestUpdateExpense(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createRoommates(t, c)

	created, err := c.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:  group.ID,
		PayerID:  "alice",
		Total:    usd("60.00"),
		Strategy: api.Strategy{Kind: "EQUAL"},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	id := created.Msg.Expense.ID

	updated, err := c.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID:   id,
		Description: "Takeout",
		PayerID:     "bob",
		Total:       usd("100.00"),
		Strategy:    api.Strategy{Kind: "SHARES", Shares: map[string]int64{"alice": 2, "bob": 1, "charlie": 1}},
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	shares := shareAmounts(updated.Msg.Expense.Shares)
	if shares["alice"] != "50.00" || shares["bob"] != "25.00" || shares["charlie"] != "25.00" {
		t.Errorf("split not recomputed: %+v", updated.Msg.Expense.Shares)
	}
	if updated.Msg.Expense.CreatedAt != created.Msg.Expense.CreatedAt {
		t.Error("CreatedAt changed on edit")
	}

	got, err := c.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: id}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Msg.Expense.PayerID != "bob" || got.Msg.Expense.Total.Amount != "100.00" || got.Msg.Expense.Strategy.Kind != "SHARES" {
		t.Errorf("edit not persisted: %+v", got.Msg.Expense)
	}

	// An edit that does not reconcile leaves the stored expense alone.
	_, err = c.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: id,
		PayerID:   "bob",
		Total:     usd("100.00"),
		Strategy:  api.Strategy{Kind: "PERCENTAGE", Percentages: map[string]string{"alice": "10"}},
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = c.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: "nonexistent-id",
		PayerID:   "bob",
		Total:     usd("1.00"),
		Strategy:  api.Strategy{Kind: "EQUAL"},
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListExpenses(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createRoommates(t, c)
	other := createRoommates(t, c)

	for _, g := range []string{group.ID, group.ID, other.ID} {
		if _, err := c.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID: g, PayerID: "charlie", Total: usd("9.00"), Strategy: api.Strategy{Kind: "EQUAL"},
		})); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	resp, err := c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 2 {
		t.Errorf("expected 2 expenses, got %d", len(resp.Msg.Expenses))
	}

	_, err = c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: "nonexistent-id"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteExpense(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createRoommates(t, c)

	created, err := c.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: group.ID, PayerID: "alice", Total: usd("9.00"), Strategy: api.Strategy{Kind: "EQUAL"},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if _, err := c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: created.Msg.Expense.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = c.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: created.Msg.Expense.ID}))
	assertCode(t, err, connect.CodeNotFound)

	// With the expense gone every balance is back to zero.
	balances, err := c.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	for _, b := range balances.Msg.Balances {
		if b.Net.Amount != "0.00" {
			t.Errorf("net[%s] = %s after delete", b.ParticipantID, b.Net.Amount)
		}
	}
}
