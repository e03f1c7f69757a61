package service

import (
	"fmt"
	"sort"

	"mmaker/internal/domain/model"
)

// PairWindow 价差 z-score 窗口：最近 20 个对齐样本
const PairWindow = 20

const (
	zEpsilon      = 1e-6 // 防止完全相关配对的零分母
	defaultZEntry = 2.0
)

// StatArb 配对统计套利信号（纯函数，无状态）
type StatArb struct {
	Entry float64 // |z| 超过该阈值触发信号
}

// NewStatArb 创建信号计算器，非正阈值取默认 2.0
func NewStatArb(entry float64) *StatArb {
	if entry <= 0 {
		entry = defaultZEntry
	}
	return &StatArb{Entry: entry}
}

// Compute 计算一个无序配对的 z-score 信号
// spread[i] = A[i] - B[i] 取最近 20 个对齐样本
// z = (当前价差 - 均值) / (标准差 + ε)
// z < -Entry: A 相对历史价差便宜 => buy; z > Entry => sell
func (s *StatArb) Compute(tickerA, tickerB string, closesA, closesB []float64) (model.ArbitragePair, error) {
	n := len(closesA)
	if len(closesB) < n {
		n = len(closesB)
	}
	if n < PairWindow {
		return model.ArbitragePair{}, fmt.Errorf("%w: %s/%s has %d aligned samples, need %d",
			ErrInsufficientHistory, tickerA, tickerB, n, PairWindow)
	}

	a := closesA[len(closesA)-PairWindow:]
	b := closesB[len(closesB)-PairWindow:]

	spreads := make([]float64, PairWindow)
	for i := range spreads {
		spreads[i] = a[i] - b[i]
	}

	current := a[PairWindow-1] - b[PairWindow-1]
	z := (current - mean(spreads)) / (stddev(spreads) + zEpsilon)

	sig := model.SignalHold
	switch {
	case z < -s.Entry:
		sig = model.SignalBuy
	case z > s.Entry:
		sig = model.SignalSell
	}

	return model.ArbitragePair{
		TickerA: tickerA,
		TickerB: tickerB,
		ZScore:  z,
		Signal:  sig,
	}, nil
}

// ComputeAll 对当前 universe 中每个无序配对计算信号
// 样本不足的配对被跳过（不报错），结果按 ticker 字典序稳定排列
func (s *StatArb) ComputeAll(closes map[string][]float64) []model.ArbitragePair {
	tickers := make([]string, 0, len(closes))
	for t := range closes {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var pairs []model.ArbitragePair
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			p, err := s.Compute(tickers[i], tickers[j], closes[tickers[i]], closes[tickers[j]])
			if err != nil {
				continue
			}
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// SignalFor 提取某 ticker 的配对信号：取涉及该 ticker 的 |z| 最大的配对
// B 侧 ticker 的信号方向取反（A 便宜意味着 B 贵）
func SignalFor(ticker string, pairs []model.ArbitragePair) model.Signal {
	best := model.SignalHold
	bestAbs := 0.0
	for _, p := range pairs {
		var sig model.Signal
		switch ticker {
		case p.TickerA:
			sig = p.Signal
		case p.TickerB:
			switch p.Signal {
			case model.SignalBuy:
				sig = model.SignalSell
			case model.SignalSell:
				sig = model.SignalBuy
			default:
				sig = model.SignalHold
			}
		default:
			continue
		}
		abs := p.ZScore
		if abs < 0 {
			abs = -abs
		}
		if sig != model.SignalHold && abs > bestAbs {
			best = sig
			bestAbs = abs
		}
	}
	return best
}
