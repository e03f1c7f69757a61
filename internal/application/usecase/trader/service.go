package trader

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"mmaker/internal/application/port"
	appservice "mmaker/internal/application/service"
	"mmaker/internal/domain/model"
	domainservice "mmaker/internal/domain/service"
	"mmaker/internal/infrastructure/metrics"
	"mmaker/presentation"
)

type ServiceDeps struct {
	Source        port.MarketDataSource
	Signals       port.SignalProvider
	Valuation     port.ValuationProvider
	Feeds         []PriceFeed // optional, live price line between cycles
	Symbols       []string
	CycleEveryMin int
	Sink          port.Sink
	Repo          Repository

	Risk      *domainservice.RiskModel
	Arb       *domainservice.StatArb
	Liquidity *domainservice.LiquidityAdjuster
	Allocator *appservice.Allocator
	Portfolio *appservice.PortfolioService
}

// Service 评估周期的编排：抓数 -> 风险 -> 配对信号 -> 分配 -> 逐 ticker 决策 -> 报告
type Service struct {
	deps ServiceDeps
	st   *State
	rend *presentation.Renderer
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps: deps,
		st:   NewState(deps.Symbols),
		rend: presentation.NewRenderer(),
	}
}

func (s *Service) Run(ctx context.Context) error {
	if s.deps.Source == nil {
		return errors.New("no market data source")
	}

	if err := s.deps.Portfolio.Restore(ctx); err != nil {
		return err
	}

	merged := make(chan port.Tick, 1024)
	for _, feed := range s.deps.Feeds {
		ch, err := feed.Subscribe(ctx, s.deps.Symbols)
		if err != nil {
			return err
		}
		go func(in <-chan port.Tick) {
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-in:
					if !ok {
						return
					}
					merged <- t
				}
			}
		}(ch)
		log.Info().Str("feed", feed.Name()).Msg("feed started")
	}

	cycleTicker := time.NewTicker(time.Duration(s.deps.CycleEveryMin) * time.Minute)
	defer cycleTicker.Stop()

	// first cycle immediately, then on the ticker
	s.runCycle(ctx, time.Now())

	_ = s.deps.Sink.WriteLive(s.rend.RenderLive(s.st.Symbols(), s.st.Cells()))

	for {
		select {
		case <-ctx.Done():
			_ = s.deps.Sink.NewLine()
			return ctx.Err()

		case now := <-cycleTicker.C:
			s.runCycle(ctx, now)

		case t := <-merged:
			if s.st.Apply(t) {
				_ = s.deps.Sink.WriteLive(s.rend.RenderLive(s.st.Symbols(), s.st.Cells()))
			}
			if t.PriceNum > 0 {
				_ = s.deps.Repo.UpsertLatestPrice(ctx, t.Ticker, t.PriceNum, t.Ts)
			}
		}
	}
}

// runCycle 一次完整评估。账本持久化失败中止本周期并回读账本，
// 其余失败折叠为单 ticker 的 error 决策
func (s *Service) runCycle(ctx context.Context, now time.Time) {
	start := time.Now()

	report := model.CycleReport{
		Timestamp:   now.UnixMilli(),
		Allocations: make(map[string]model.Allocation),
		Decisions:   make(map[string]model.TradeDecision),
		Status:      "success",
	}

	closes := make(map[string][]float64)
	lastClose := make(map[string]float64)
	quotes := make(map[string]*model.LiquidityQuote)
	riskMap := make(map[string]model.RiskAssessment)

	for _, ticker := range s.deps.Symbols {
		snap := s.deps.Source.FetchSnapshot(ctx, ticker)
		if !snap.OK() {
			log.Warn().Str("ticker", ticker).Str("err", snap.Error).Msg("snapshot excluded")
			report.Decisions[ticker] = errorDecision(ticker, "market data unavailable")
			continue
		}
		price, _ := snap.LastClose()
		if price <= 0 {
			report.Decisions[ticker] = errorDecision(ticker, "non-positive close")
			continue
		}

		quote, err := s.deps.Liquidity.Compute(snap.Book)
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("book excluded")
			report.Decisions[ticker] = errorDecision(ticker, "order book unusable")
			continue
		}

		valuation, err := s.deps.Valuation.Value(ctx, ticker, price)
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("valuation failed, using mark")
			valuation = price
		}

		ra, err := s.deps.Risk.Compute(snap.Closes(), valuation, price)
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("risk model excluded ticker")
			report.Decisions[ticker] = errorDecision(ticker, err.Error())
			continue
		}

		closes[ticker] = snap.Closes()
		lastClose[ticker] = price
		quotes[ticker] = &quote
		riskMap[ticker] = ra
	}

	pairs := s.deps.Arb.ComputeAll(closes)

	allocations, err := s.deps.Allocator.Allocate(riskMap)
	if err != nil {
		log.Error().Err(err).Msg("allocation failed, no trades this cycle")
		report.Status = "error"
		report.Error = err.Error()
		s.finishCycle(ctx, now, start, report)
		return
	}
	report.Allocations = allocations

	for _, ticker := range s.deps.Symbols {
		if _, done := report.Decisions[ticker]; done {
			continue
		}
		alloc, ok := allocations[ticker]
		if !ok {
			continue
		}

		sigs, err := s.deps.Signals.Signals(ctx, ticker)
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("signal provider failed, neutral")
			sigs = model.NeutralSignals()
		}

		decision, err := s.deps.Portfolio.Evaluate(ctx, appservice.EvalInput{
			Ticker:       ticker,
			CurrentPrice: lastClose[ticker],
			Allocation:   alloc,
			Signals:      sigs,
			ArbSignal:    domainservice.SignalFor(ticker, pairs),
			Liquidity:    quotes[ticker],
			Now:          now,
		})
		report.Decisions[ticker] = decision
		if err != nil {
			// ledger out of sync with storage; reload and stop the cycle
			log.Error().Err(err).Str("ticker", ticker).Msg("ledger write failed, aborting cycle")
			metrics.LedgerWriteFailures.Inc()
			report.Status = "error"
			report.Error = err.Error()
			if rerr := s.deps.Portfolio.Restore(ctx); rerr != nil {
				log.Error().Err(rerr).Msg("ledger reload failed")
			}
			break
		}
	}

	s.finishCycle(ctx, now, start, report)
}

func (s *Service) finishCycle(ctx context.Context, now, start time.Time, report model.CycleReport) {
	if payload, err := json.Marshal(report); err == nil {
		if err := s.deps.Repo.InsertSnapshot(ctx, report.Timestamp, string(payload)); err != nil {
			log.Warn().Err(err).Msg("snapshot persist failed")
		}
	}

	_ = s.deps.Sink.WriteReport(now, s.rend.RenderReport(report, s.deps.Symbols))

	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	if report.Status == "error" {
		metrics.CycleErrors.Inc()
	}
	for _, d := range report.Decisions {
		metrics.DecisionsTotal.WithLabelValues(string(d.Status)).Inc()
		if d.Status == model.StatusSuccess {
			metrics.TradesTotal.WithLabelValues(string(d.Action)).Inc()
		}
	}
	metrics.OpenPositions.Set(float64(s.deps.Portfolio.OpenPositionCount()))
}

func errorDecision(ticker, reason string) model.TradeDecision {
	return model.TradeDecision{
		Ticker: ticker,
		Status: model.StatusError,
		Action: model.ActionNone,
		Reason: reason,
	}
}
