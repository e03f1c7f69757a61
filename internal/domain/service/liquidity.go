package service

import (
	"fmt"

	"mmaker/internal/domain/model"
)

const (
	defaultTargetSpread = 0.01  // 1%
	defaultSpreadAdjust = 0.005 // ±0.5%
)

// LiquidityAdjuster 流动性报价调整（纯函数，无状态）
// 点差超过目标时把有效买价下移、卖价上移，挡住过薄/过宽的订单簿
type LiquidityAdjuster struct {
	TargetSpread float64
	Adjust       float64
}

// NewLiquidityAdjuster 创建调整器，非正参数取默认值
func NewLiquidityAdjuster(targetSpread, adjust float64) *LiquidityAdjuster {
	if targetSpread <= 0 {
		targetSpread = defaultTargetSpread
	}
	if adjust <= 0 {
		adjust = defaultSpreadAdjust
	}
	return &LiquidityAdjuster{TargetSpread: targetSpread, Adjust: adjust}
}

// Compute 计算调整后的报价
// 任一侧为空该 ticker 本周期被排除
func (l *LiquidityAdjuster) Compute(book model.OrderBook) (model.LiquidityQuote, error) {
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return model.LiquidityQuote{}, fmt.Errorf("%w: empty bid or ask side", ErrInvalidMarketData)
	}

	bestBid := book.Bids[0].Price
	bestAsk := book.Asks[0].Price
	if bestBid <= 0 {
		return model.LiquidityQuote{}, fmt.Errorf("%w: non-positive best bid", ErrInvalidMarketData)
	}

	spread := (bestAsk - bestBid) / bestBid

	depth := 0.0
	for _, lvl := range book.Bids {
		depth += lvl.Size
	}
	for _, lvl := range book.Asks {
		depth += lvl.Size
	}

	bid, ask := bestBid, bestAsk
	if spread > l.TargetSpread {
		bid = bestBid * (1 - l.Adjust)
		ask = bestAsk * (1 + l.Adjust)
	}

	return model.LiquidityQuote{
		Bid:    bid,
		Ask:    ask,
		Spread: spread,
		Depth:  depth,
	}, nil
}
