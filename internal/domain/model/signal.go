package model

// Signal 方向信号
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Valid 是否为已知信号值
func (s Signal) Valid() bool {
	switch s {
	case SignalBuy, SignalSell, SignalHold:
		return true
	}
	return false
}

// SignalSet 上游信号提供方的每 ticker 输出（对核心是不透明的数值/分类结果）
type SignalSet struct {
	Quant          Signal  `json:"quant"`           // MACD 等技术面信号 buy/sell/hold
	SentimentScore float64 `json:"sentiment_score"` // 0-100, 100=极度看多
	Pattern        string  `json:"pattern"`         // 自由文本形态分析，只关心有无
	VolumeSpike    bool    `json:"volume_spike"`    // 成交量异动
}

// NeutralSignals 中性缺省：无技术面信号，情绪 50
func NeutralSignals() SignalSet {
	return SignalSet{Quant: SignalHold, SentimentScore: 50.0}
}
