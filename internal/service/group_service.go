package service

import (
	"context"
	"errors"
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

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store           storage.Store
	defaultCurrency string
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, defaultCurrency string) *GroupService {
	return &GroupService{store: store, defaultCurrency: defaultCurrency}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}
	currency := req.Msg.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	if err := money.ValidateCurrency(currency); err != nil {
		return nil, toConnectError(err)
	}
	members := membersFromAPI(req.Msg.Members)
	if err := validateMembers(members); err != nil {
		return nil, toConnectError(err)
	}

	group := &models.Group{
		Name:      name,
		Currency:  money.Zero(currency).Currency,
		Members:   members,
		CreatedBy: middleware.GetUserID(ctx),
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "currency", group.Currency)

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, len(groups))
	for i, group := range groups {
		out[i] = groupToAPI(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames a group and replaces its member list. Empty fields
// keep their current value. A member who still appears on an expense or
// settlement cannot be removed.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if name := strings.TrimSpace(req.Msg.Name); name != "" {
		group.Name = name
	}
	members := group.Members
	if len(req.Msg.Members) > 0 {
		members = membersFromAPI(req.Msg.Members)
	}
	if err := validateMembers(members); err != nil {
		return nil, toConnectError(err)
	}

	group.Members = members

	// The store refuses to drop a member still on an expense or settlement,
	// checking inside the same transaction as the update.
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		if errors.Is(err, storage.ErrNotMember) {
			slog.Warn("UpdateGroup rejected", "group_id", group.ID, "error", err)
			return nil, connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("cannot remove a member with recorded expenses or settlements: %w", err))
		}
		slog.Error("UpdateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", group.ID)

	return connect.NewResponse(&api.UpdateGroupResponse{Group: groupToAPI(group)}), nil
}

// DeleteGroup removes a group with its expenses and settlements.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupBalances calculates net balances and suggested payments across
// all expenses and settlements of a group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - group not found", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balance, err := groupBalance(ctx, s.store, groupID, group.Members)
	if err != nil {
		slog.Error("GetGroupBalances failed - calculation error", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	if balance.Currency == "" {
		balance.Currency = group.Currency
	}
	debts := calculator.SimplifyDebts(balance)

	names := make(map[string]string, len(group.Members))
	for _, m := range group.Members {
		names[m.ID] = m.Name
	}

	resp := &api.GetGroupBalancesResponse{
		Currency: balance.Currency,
		Balances: make([]api.MemberBalance, len(balance.Members)),
		Debts:    make([]api.Debt, len(debts)),
	}
	for i, m := range balance.Members {
		resp.Balances[i] = api.MemberBalance{
			ParticipantID: m.ParticipantID,
			Name:          names[m.ParticipantID],
			Net:           moneyToAPI(withCurrency(m.Net, balance.Currency)),
			Paid:          moneyToAPI(withCurrency(m.Paid, balance.Currency)),
			Owed:          moneyToAPI(withCurrency(m.Owed, balance.Currency)),
		}
	}
	for i, d := range debts {
		resp.Debts[i] = api.Debt{From: d.From, To: d.To, Amount: moneyToAPI(d.Amount)}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"members_count", len(balance.Members),
		"debts_count", len(debts),
	)

	return connect.NewResponse(resp), nil
}

// withCurrency fills in the currency of a zero amount from an empty ledger.
func withCurrency(a money.Amount, cur string) money.Amount {
	if a.Currency == "" {
		return money.New(a.Minor, cur)
	}
	return a
}
