package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.SplitServiceHandler = (*SplitService)(nil)

// SplitService exposes the split calculator without persistence, for
// previewing a split while an expense is being entered.
type SplitService struct {
	metrics         *middleware.Metrics
	defaultCurrency string
}

// NewSplitService creates a SplitService. Amounts sent without a currency
// are read in defaultCurrency.
func NewSplitService(metrics *middleware.Metrics, defaultCurrency string) *SplitService {
	return &SplitService{metrics: metrics, defaultCurrency: defaultCurrency}
}

// ComputeSplit applies a strategy to a total and reports how well the result reconciles.
func (s *SplitService) ComputeSplit(ctx context.Context, req *connect.Request[api.ComputeSplitRequest]) (*connect.Response[api.ComputeSplitResponse], error) {
	slog.Info("ComputeSplit request received",
		"kind", req.Msg.Strategy.Kind,
		"total", req.Msg.Total.Amount,
		"participants_count", len(req.Msg.Participants),
	)

	total, err := parseMoney(req.Msg.Total, s.defaultCurrency)
	if err != nil {
		return nil, toConnectError(err)
	}
	strategy, _, err := strategyFromAPI(req.Msg.Strategy, total.Currency)
	if err != nil {
		return nil, toConnectError(err)
	}

	result, err := calculator.ComputeSplit(total, participantsFromAPI(req.Msg.Participants), strategy)
	if err != nil {
		slog.Warn("ComputeSplit rejected", "kind", strategy.Kind(), "error", err)
		return nil, toConnectError(err)
	}
	status := calculator.ValidateSplit(result, total)
	s.metrics.ObserveSplit(string(result.Kind), string(status))

	slog.Info("ComputeSplit successful", "kind", result.Kind, "status", status)

	return connect.NewResponse(&api.ComputeSplitResponse{
		Result: resultToAPI(result),
		Status: string(status),
	}), nil
}

// ValidateSplit classifies a split result against its total.
func (s *SplitService) ValidateSplit(ctx context.Context, req *connect.Request[api.ValidateSplitRequest]) (*connect.Response[api.ValidateSplitResponse], error) {
	total, err := parseMoney(req.Msg.Total, s.defaultCurrency)
	if err != nil {
		return nil, toConnectError(err)
	}
	result, err := resultFromAPI(req.Msg.Result, total.Currency)
	if err != nil {
		return nil, toConnectError(err)
	}

	status := calculator.ValidateSplit(result, total)
	slog.Debug("ValidateSplit", "total", total, "shares_count", len(result.Shares), "status", status)

	return connect.NewResponse(&api.ValidateSplitResponse{Status: string(status)}), nil
}

// FreshStrategy returns the starting inputs for a strategy kind.
func (s *SplitService) FreshStrategy(ctx context.Context, req *connect.Request[api.FreshStrategyRequest]) (*connect.Response[api.FreshStrategyResponse], error) {
	kind, err := calculator.ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, toConnectError(err)
	}
	strategy, err := calculator.FreshStrategy(kind, participantsFromAPI(req.Msg.Participants))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.FreshStrategyResponse{Strategy: strategyToAPI(strategy)}), nil
}

// RebalancePercentages fills in the percentages the user has not entered.
func (s *SplitService) RebalancePercentages(ctx context.Context, req *connect.Request[api.RebalancePercentagesRequest]) (*connect.Response[api.RebalancePercentagesResponse], error) {
	weights := make(map[string]decimal.Decimal, len(req.Msg.Percentages))
	for id, v := range req.Msg.Percentages {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, invalidArgument("percentage %q for %s is not a number", v, id)
		}
		weights[id] = d
	}
	touched := make(map[string]bool, len(req.Msg.Touched))
	for _, id := range req.Msg.Touched {
		touched[id] = true
	}

	out, err := calculator.RebalancePercentages(participantsFromAPI(req.Msg.Participants), weights, touched)
	if err != nil {
		return nil, toConnectError(err)
	}

	percentages := make(map[string]string, len(out))
	for id, w := range out {
		percentages[id] = w.String()
	}
	return connect.NewResponse(&api.RebalancePercentagesResponse{Percentages: percentages}), nil
}
