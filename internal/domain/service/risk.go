package service

import (
	"fmt"
	"math"

	"mmaker/internal/domain/model"
)

// RiskWindow 波动率窗口：最近 20 根收盘价
const RiskWindow = 20

const (
	defaultSizeCap = 1000.0 // 单 ticker 仓位上限（货币单位）
	defaultStopPct = 0.05   // 止损：现价下方 5%
)

// RiskModel 波动率与估值调整的仓位/止损模型（纯函数，无状态）
type RiskModel struct {
	SizeCap float64
	StopPct float64
}

// NewRiskModel 创建风险模型，非正参数取默认值
func NewRiskModel(sizeCap, stopPct float64) *RiskModel {
	if sizeCap <= 0 {
		sizeCap = defaultSizeCap
	}
	if stopPct <= 0 {
		stopPct = defaultStopPct
	}
	return &RiskModel{SizeCap: sizeCap, StopPct: stopPct}
}

// Compute 计算单 ticker 的风险评估
// volatility = std(最近20收盘)/mean(最近20收盘)
// 估值低于现价时仓位减半；仓位随波动率收缩且不超过 SizeCap
func (m *RiskModel) Compute(closes []float64, valuation, currentPrice float64) (model.RiskAssessment, error) {
	if len(closes) < RiskWindow {
		return model.RiskAssessment{}, fmt.Errorf("%w: have %d closes, need %d", ErrInsufficientHistory, len(closes), RiskWindow)
	}
	window := closes[len(closes)-RiskWindow:]
	for _, c := range window {
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return model.RiskAssessment{}, fmt.Errorf("%w: non-positive close in window", ErrInvalidMarketData)
		}
	}

	volatility := stddev(window) / mean(window)

	riskMultiplier := 1.0
	if valuation < currentPrice {
		riskMultiplier = 0.5
	}

	positionSize := math.Min(m.SizeCap, m.SizeCap/(1+volatility)) * riskMultiplier
	stopPrice := currentPrice * (1 - m.StopPct)

	return model.RiskAssessment{
		PositionSize: positionSize,
		StopPrice:    stopPrice,
		Volatility:   volatility,
	}, nil
}
