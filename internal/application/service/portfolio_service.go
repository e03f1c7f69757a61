package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

const (
	defaultBullSentiment = 75.0
	defaultBearSentiment = 25.0
)

// EvalInput 单 ticker 单周期的决策输入（上游分析结果全部由调用方注入）
type EvalInput struct {
	Ticker       string
	CurrentPrice float64 // latest close
	Allocation   model.Allocation
	Signals      model.SignalSet
	ArbSignal    model.Signal
	Liquidity    *model.LiquidityQuote // nil when the book was excluded this cycle
	Now          time.Time
}

// PortfolioService 组合状态机：账本的唯一写入方
// 账本变更先持久化（persist-then-report），失败视为周期级致命错误
type PortfolioService struct {
	mu sync.Mutex

	repo port.Repository
	pub  port.DecisionPublisher // optional

	bullSentiment float64
	bearSentiment float64

	universe  map[string]struct{}
	positions map[string]model.Position
	restored  bool
}

func NewPortfolioService(repo port.Repository, universe []string, bullSentiment, bearSentiment float64, pub port.DecisionPublisher) *PortfolioService {
	if bullSentiment <= 0 {
		bullSentiment = defaultBullSentiment
	}
	if bearSentiment <= 0 {
		bearSentiment = defaultBearSentiment
	}
	uni := make(map[string]struct{}, len(universe))
	for _, t := range universe {
		uni[t] = struct{}{}
	}
	return &PortfolioService{
		repo:          repo,
		pub:           pub,
		bullSentiment: bullSentiment,
		bearSentiment: bearSentiment,
		universe:      uni,
		positions:     make(map[string]model.Position),
	}
}

// Restore 从持久化存储装载账本；存储缺失视为空账本
// 必须在第一次 Evaluate 前调用；持久化失败后重新调用可回到最后落盘状态
func (s *PortfolioService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.repo.LoadPositions(ctx)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	s.positions = make(map[string]model.Position, len(positions))
	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		s.positions[p.Ticker] = p
	}
	s.restored = true
	log.Info().Int("positions", len(s.positions)).Msg("ledger restored")
	return nil
}

// Position 当前持仓快照
func (s *PortfolioService) Position(ticker string) (model.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[ticker]
	return p, ok
}

// OpenPositionCount 当前持仓数
func (s *PortfolioService) OpenPositionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

// Evaluate 单 ticker 决策
// 返回的 error 仅在账本持久化失败时非 nil，调用方应中止本周期；
// 其它失败都折叠进 TradeDecision.Status，不跨边界抛出
func (s *PortfolioService) Evaluate(ctx context.Context, in EvalInput) (model.TradeDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.restored {
		return errDecision(in.Ticker, "ledger not restored"), fmt.Errorf("evaluate %s: ledger not restored", in.Ticker)
	}
	if _, ok := s.universe[in.Ticker]; !ok {
		return errDecision(in.Ticker, "ticker not in tradable universe"), nil
	}
	if in.CurrentPrice <= 0 {
		return errDecision(in.Ticker, "non-positive current price"), nil
	}

	pos, holding := s.positions[in.Ticker]
	current := 0.0
	if holding {
		current = pos.Quantity
	}
	target := in.Allocation.Amount / in.CurrentPrice

	if target > current {
		bullish := (in.Signals.SentimentScore > s.bullSentiment && in.Signals.Quant == model.SignalBuy) ||
			in.ArbSignal == model.SignalBuy
		if bullish {
			return s.executeBuy(ctx, in, pos, holding, target-current)
		}
		d := model.TradeDecision{
			Ticker: in.Ticker,
			Status: model.StatusSkipped,
			Action: model.ActionNone,
			Reason: "under target but no entry signal",
		}
		if holding {
			snap := pos
			d.Position = &snap
		}
		return d, nil
	}

	if holding {
		bearish := in.Signals.SentimentScore < s.bearSentiment ||
			in.Signals.Quant == model.SignalSell ||
			in.ArbSignal == model.SignalSell
		stopHit := in.Allocation.StopPrice > 0 && in.CurrentPrice <= in.Allocation.StopPrice

		if target < current || bearish || stopHit {
			sellQty := current
			if target < current {
				sellQty = min(current-target, current)
			}
			if sellQty > 0 {
				return s.executeSell(ctx, in, pos, sellQty)
			}
		}

		unrealized := (in.CurrentPrice - pos.EntryPrice) * current
		snap := pos
		return model.TradeDecision{
			Ticker:     in.Ticker,
			Status:     model.StatusHold,
			Action:     model.ActionNone,
			ProfitLoss: unrealized,
			Position:   &snap,
			Reason:     "holding position",
		}, nil
	}

	return model.TradeDecision{
		Ticker: in.Ticker,
		Status: model.StatusSkipped,
		Action: model.ActionNone,
		Reason: "no position and no trade signal",
	}, nil
}

// executeBuy 成交价取调整后卖价，加权平均更新入场价
func (s *PortfolioService) executeBuy(ctx context.Context, in EvalInput, pos model.Position, holding bool, qty float64) (model.TradeDecision, error) {
	fill := in.CurrentPrice
	if in.Liquidity != nil && in.Liquidity.Ask > 0 {
		fill = in.Liquidity.Ask
	}
	ts := in.Now.UnixMilli()

	next := model.Position{Ticker: in.Ticker, Quantity: qty, EntryPrice: fill, UpdatedAt: ts}
	if holding {
		next.Quantity = pos.Quantity + qty
		next.EntryPrice = (pos.EntryPrice*pos.Quantity + fill*qty) / next.Quantity
	}

	if err := s.repo.UpsertPosition(ctx, next); err != nil {
		return errDecision(in.Ticker, "ledger write failed"), fmt.Errorf("persist position %s: %w", in.Ticker, err)
	}
	s.positions[in.Ticker] = next

	trade := model.Trade{
		ID:        uuid.NewString(),
		Ticker:    in.Ticker,
		Action:    model.ActionBuy,
		Quantity:  qty,
		Price:     fill,
		Timestamp: ts,
	}
	if err := s.repo.AppendTrade(ctx, trade); err != nil {
		return errDecision(in.Ticker, "trade log write failed"), fmt.Errorf("append trade %s: %w", in.Ticker, err)
	}

	snap := next
	decision := model.TradeDecision{
		Ticker:   in.Ticker,
		Status:   model.StatusSuccess,
		Action:   model.ActionBuy,
		Quantity: qty,
		Price:    fill,
		Position: &snap,
	}
	s.publish(ctx, decision)

	log.Info().
		Str("ticker", in.Ticker).
		Float64("qty", qty).
		Float64("price", fill).
		Float64("entry", next.EntryPrice).
		Msg("buy executed")
	return decision, nil
}

// executeSell 成交价取调整后买价；清仓删除账本条目，减仓不动入场价
func (s *PortfolioService) executeSell(ctx context.Context, in EvalInput, pos model.Position, qty float64) (model.TradeDecision, error) {
	fill := in.CurrentPrice
	if in.Liquidity != nil && in.Liquidity.Bid > 0 {
		fill = in.Liquidity.Bid
	}
	ts := in.Now.UnixMilli()

	realized := (fill - pos.EntryPrice) * qty
	remaining := pos.Quantity - qty

	var snap *model.Position
	if remaining <= 0 {
		if err := s.repo.DeletePosition(ctx, in.Ticker); err != nil {
			return errDecision(in.Ticker, "ledger write failed"), fmt.Errorf("delete position %s: %w", in.Ticker, err)
		}
		delete(s.positions, in.Ticker)
	} else {
		next := model.Position{Ticker: in.Ticker, Quantity: remaining, EntryPrice: pos.EntryPrice, UpdatedAt: ts}
		if err := s.repo.UpsertPosition(ctx, next); err != nil {
			return errDecision(in.Ticker, "ledger write failed"), fmt.Errorf("persist position %s: %w", in.Ticker, err)
		}
		s.positions[in.Ticker] = next
		snap = &next
	}

	trade := model.Trade{
		ID:         uuid.NewString(),
		Ticker:     in.Ticker,
		Action:     model.ActionSell,
		Quantity:   qty,
		Price:      fill,
		ProfitLoss: realized,
		Timestamp:  ts,
	}
	if err := s.repo.AppendTrade(ctx, trade); err != nil {
		return errDecision(in.Ticker, "trade log write failed"), fmt.Errorf("append trade %s: %w", in.Ticker, err)
	}

	decision := model.TradeDecision{
		Ticker:     in.Ticker,
		Status:     model.StatusSuccess,
		Action:     model.ActionSell,
		Quantity:   qty,
		Price:      fill,
		ProfitLoss: realized,
		Position:   snap,
	}
	s.publish(ctx, decision)

	log.Info().
		Str("ticker", in.Ticker).
		Float64("qty", qty).
		Float64("price", fill).
		Float64("pnl", realized).
		Msg("sell executed")
	return decision, nil
}

// publish best-effort：下游掉线不影响决策结果
func (s *PortfolioService) publish(ctx context.Context, d model.TradeDecision) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishDecision(ctx, d); err != nil {
		log.Warn().Err(err).Str("ticker", d.Ticker).Msg("decision publish failed")
	}
}

func errDecision(ticker, reason string) model.TradeDecision {
	return model.TradeDecision{
		Ticker: ticker,
		Status: model.StatusError,
		Action: model.ActionNone,
		Reason: reason,
	}
}
