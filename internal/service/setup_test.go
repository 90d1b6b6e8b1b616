package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
)

const testUserID = "alice"

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			return next(middleware.WithUser(ctx, testUserID, "alice@example.com"), req)
		}
	}
}

type testClients struct {
	split       *api.SplitServiceClient
	groups      *api.GroupServiceClient
	expenses    *api.ExpenseServiceClient
	settlements *api.SettlementServiceClient
	auth        *api.AuthServiceClient
}

// setupTestServer serves every service against a temp SQLite database.
// The auth service runs behind the real token middleware; the rest see a
// fixed signed-in user.
func setupTestServer(t *testing.T) testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	metrics := middleware.NewMetrics(prometheus.NewRegistry())
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, bcrypt.MinCost)

	testAuth := connect.WithInterceptors(testAuthInterceptor())
	realAuth := connect.WithInterceptors(middleware.AuthByProcedure(jwtManager, AuthenticatedProcedures...))

	mux := http.NewServeMux()
	mux.Handle(api.NewSplitServiceHandler(NewSplitService(metrics, "USD"), testAuth))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, "USD"), testAuth))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, metrics), testAuth))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(store), testAuth))
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, slog.Default()), realAuth))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return testClients{
		split:       api.NewSplitServiceClient(http.DefaultClient, server.URL),
		groups:      api.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    api.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
		auth:        api.NewAuthServiceClient(http.DefaultClient, server.URL),
	}
}

func usd(amount string) api.Money {
	return api.Money{Amount: amount, Currency: "USD"}
}

func people(ids ...string) []api.Participant {
	out := make([]api.Participant, len(ids))
	for i, id := range ids {
		out[i] = api.Participant{ID: id}
	}
	return out
}

// createRoommates creates a USD group with alice, bob and charlie.
func createRoommates(t *testing.T, c testClients) api.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name: "Roommates",
		Members: []api.Member{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
			{ID: "charlie", Name: "Charlie"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func shareAmounts(shares []api.Share) map[string]string {
	out := make(map[string]string, len(shares))
	for _, s := range shares {
		out[s.ParticipantID] = s.Amount.Amount
	}
	return out
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("code = %v, want %v (%v)", got, want, err)
	}
}
