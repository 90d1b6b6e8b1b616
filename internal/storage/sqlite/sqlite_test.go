package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func roommates(t *testing.T, store *SQLiteStore) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:     "Roommates",
		Currency: "USD",
		Members: []models.Member{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
			{ID: "charlie", Name: "Charlie"},
		},
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and keeps member order", func(t *testing.T) {
		group := roommates(t, store)
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" || got.Currency != "USD" {
			t.Errorf("unexpected group: %+v", got)
		}
		want := []string{"alice", "bob", "charlie"}
		if len(got.Members) != len(want) {
			t.Fatalf("Members count mismatch: got %d, want %d", len(got.Members), len(want))
		}
		for i, id := range want {
			if got.Members[i].ID != id {
				t.Errorf("member %d = %s, want %s", i, got.Members[i].ID, id)
			}
		}
	})

	t.Run("UpdateGroup replaces members", func(t *testing.T) {
		group := roommates(t, store)
		group.Name = "Flat 4"
		group.Members = []models.Member{{ID: "dave", Name: "Dave"}, {ID: "alice", Name: "Alice"}}
		if err := store.UpdateGroup(ctx, group); err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Flat 4" || len(got.Members) != 2 || got.Members[0].ID != "dave" {
			t.Errorf("unexpected group after update: %+v", got)
		}
	})

	t.Run("ListGroups includes members", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) < 2 {
			t.Fatalf("expected at least 2 groups, got %d", len(groups))
		}
		for _, g := range groups {
			if len(g.Members) == 0 {
				t.Errorf("group %s has no members", g.ID)
			}
		}
	})

	t.Run("missing group", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteGroup error = %v, want ErrNotFound", err)
		}
		err := store.UpdateGroup(ctx, &models.Group{ID: "nonexistent-id", Name: "x"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateGroup error = %v, want ErrNotFound", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := roommates(t, store)

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Groceries",
		Category:    "food",
		PayerID:     "alice",
		Total:       money.MustParse("100.00", "USD"),
		SplitType:   "PERCENTAGE",
		SplitParams: models.SplitParams{Percentages: map[string]string{"alice": "50", "bob": "25", "charlie": "25"}},
		Shares: []models.ExpenseShare{
			{ParticipantID: "alice", Amount: money.New(5000, "USD")},
			{ParticipantID: "bob", Amount: money.New(2500, "USD")},
			{ParticipantID: "charlie", Amount: money.New(2500, "USD")},
		},
		CreatedBy: "alice",
	}

	t.Run("CreateExpense round trip", func(t *testing.T) {
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.CreatedAt == 0 {
			t.Fatalf("expected ID and CreatedAt to be set: %+v", expense)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Total != expense.Total {
			t.Errorf("Total mismatch: got %v, want %v", got.Total, expense.Total)
		}
		if got.SplitParams.Percentages["bob"] != "25" {
			t.Errorf("split params not restored: %+v", got.SplitParams)
		}
		if len(got.Shares) != 3 || got.Shares[0].ParticipantID != "alice" || got.Shares[0].Amount.Minor != 5000 {
			t.Errorf("shares not restored in order: %+v", got.Shares)
		}
	})

	t.Run("UpdateExpense replaces shares", func(t *testing.T) {
		expense.Total = money.MustParse("90.00", "USD")
		expense.SplitType = "EQUAL"
		expense.SplitParams = models.SplitParams{}
		expense.Shares = []models.ExpenseShare{
			{ParticipantID: "bob", Amount: money.New(4500, "USD")},
			{ParticipantID: "charlie", Amount: money.New(4500, "USD")},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Total.Minor != 9000 || len(got.Shares) != 2 || got.Shares[0].ParticipantID != "bob" {
			t.Errorf("unexpected expense after update: %+v", got)
		}
	})

	t.Run("ListExpensesByGroup", func(t *testing.T) {
		second := &models.Expense{
			GroupID: group.ID, Description: "Rent", PayerID: "bob",
			Total: money.New(300, "USD"), SplitType: "EQUAL",
			Shares: []models.ExpenseShare{{ParticipantID: "bob", Amount: money.New(300, "USD")}},
		}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(expenses))
		}
		for _, e := range expenses {
			if len(e.Shares) == 0 {
				t.Errorf("expense %s has no shares", e.ID)
			}
		}
	})

	t.Run("expense for unknown group is rejected", func(t *testing.T) {
		err := store.CreateExpense(ctx, &models.Expense{GroupID: "nope", PayerID: "a", Total: money.New(1, "USD"), SplitType: "EQUAL"})
		if err == nil {
			t.Error("expected foreign key error")
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteExpense error = %v, want ErrNotFound", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := roommates(t, store)

	settlement := &models.Settlement{
		GroupID: group.ID,
		FromID:  "bob",
		ToID:    "alice",
		Amount:  money.MustParse("12.50", "USD"),
		Note:    "pizza",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	got, err := store.GetSettlement(ctx, settlement.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if got.Amount.Minor != 1250 || got.Note != "pizza" || got.FromID != "bob" {
		t.Errorf("unexpected settlement: %+v", got)
	}

	list, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSettlementsByGroup = %d, %v", len(list), err)
	}

	// Deleting the group cascades.
	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("settlement survived group delete: %v", err)
	}
}

func TestMembership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := roommates(t, store)

	expense := &models.Expense{
		GroupID: group.ID, Description: "Pizza", PayerID: "alice",
		Total: money.New(900, "USD"), SplitType: "EQUAL",
		Shares: []models.ExpenseShare{
			{ParticipantID: "alice", Amount: money.New(450, "USD")},
			{ParticipantID: "bob", Amount: money.New(450, "USD")},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("removing a referenced member is rejected", func(t *testing.T) {
		update := *group
		update.Name = "Renamed"
		update.Members = []models.Member{{ID: "alice", Name: "Alice"}, {ID: "charlie", Name: "Charlie"}}
		if err := store.UpdateGroup(ctx, &update); !errors.Is(err, storage.ErrNotMember) {
			t.Fatalf("UpdateGroup error = %v, want ErrNotMember", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" || len(got.Members) != 3 {
			t.Errorf("rejected update was applied: %+v", got)
		}
	})

	t.Run("removing an unreferenced member is allowed", func(t *testing.T) {
		update := *group
		update.Members = []models.Member{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}
		if err := store.UpdateGroup(ctx, &update); err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}
	})

	t.Run("expense for a non-member is rejected", func(t *testing.T) {
		stray := &models.Expense{
			GroupID: group.ID, Description: "Taxi", PayerID: "alice",
			Total: money.New(100, "USD"), SplitType: "EQUAL",
			Shares: []models.ExpenseShare{{ParticipantID: "charlie", Amount: money.New(100, "USD")}},
		}
		if err := store.CreateExpense(ctx, stray); !errors.Is(err, storage.ErrNotMember) {
			t.Fatalf("CreateExpense error = %v, want ErrNotMember", err)
		}
		if _, err := store.GetExpense(ctx, stray.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("rejected expense was stored: %v", err)
		}

		expense.PayerID = "charlie"
		if err := store.UpdateExpense(ctx, expense); !errors.Is(err, storage.ErrNotMember) {
			t.Errorf("UpdateExpense error = %v, want ErrNotMember", err)
		}
	})

	t.Run("settlement with a non-member is rejected", func(t *testing.T) {
		settlement := &models.Settlement{GroupID: group.ID, FromID: "charlie", ToID: "alice", Amount: money.New(100, "USD")}
		if err := store.CreateSettlement(ctx, settlement); !errors.Is(err, storage.ErrNotMember) {
			t.Fatalf("CreateSettlement error = %v, want ErrNotMember", err)
		}
		list, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil || len(list) != 0 {
			t.Errorf("ListSettlementsByGroup = %d, %v", len(list), err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice@Example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got == nil || got.ID != user.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", got, err)
	}

	got, err = store.GetUserByID(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("GetUserByID(missing) = %+v, %v", got, err)
	}

	err = store.CreateUser(ctx, models.NewUser(" ALICE@example.com", "Other", "hash"))
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("duplicate email error = %v, want ErrAlreadyExists", err)
	}
}
