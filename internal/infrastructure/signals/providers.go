package signals

import (
	"context"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

// StaticSignalProvider 外部信号接入前的缺省实现：中性情绪 + hold
// 让买卖判定完全由套利与止损信号驱动
type StaticSignalProvider struct{}

func NewStaticSignalProvider() *StaticSignalProvider {
	return &StaticSignalProvider{}
}

func (p *StaticSignalProvider) Signals(ctx context.Context, ticker string) (model.SignalSet, error) {
	return model.NeutralSignals(), nil
}

// MarkValuationProvider 估值 = 现价，不触发低估折减
type MarkValuationProvider struct{}

func NewMarkValuationProvider() *MarkValuationProvider {
	return &MarkValuationProvider{}
}

func (p *MarkValuationProvider) Value(ctx context.Context, ticker string, currentPrice float64) (float64, error) {
	return currentPrice, nil
}

var (
	_ port.SignalProvider    = (*StaticSignalProvider)(nil)
	_ port.ValuationProvider = (*MarkValuationProvider)(nil)
)
