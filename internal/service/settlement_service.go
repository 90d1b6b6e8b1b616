package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService records payments between group members.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// CreateSettlement records that one member paid another.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	slog.Info("CreateSettlement request received",
		"group_id", req.Msg.GroupID,
		"from_id", req.Msg.FromID,
		"to_id", req.Msg.ToID,
		"amount", req.Msg.Amount.Amount,
	)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := requireMember(group, "settlement payer", req.Msg.FromID); err != nil {
		return nil, toConnectError(err)
	}
	if err := requireMember(group, "settlement receiver", req.Msg.ToID); err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.FromID == req.Msg.ToID {
		return nil, invalidArgument("cannot settle with yourself")
	}

	amount, err := parseMoney(req.Msg.Amount, group.Currency)
	if err != nil {
		return nil, toConnectError(err)
	}
	if amount.Currency != group.Currency {
		return nil, invalidArgument("settlement must be in %s", group.Currency)
	}
	if amount.Sign() <= 0 {
		return nil, invalidArgument("amount must be positive")
	}

	settlement := &models.Settlement{
		GroupID:   group.ID,
		FromID:    req.Msg.FromID,
		ToID:      req.Msg.ToID,
		Amount:    amount,
		Note:      strings.TrimSpace(req.Msg.Note),
		CreatedBy: middleware.GetUserID(ctx),
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID, "group_id", group.ID)

	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: settlementToAPI(settlement)}), nil
}

// ListSettlements returns the settlements of a group.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	if req.Msg.GroupID == "" {
		return nil, invalidArgument("group_id required")
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = settlementToAPI(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	if err := s.store.DeleteSettlement(ctx, req.Msg.SettlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
