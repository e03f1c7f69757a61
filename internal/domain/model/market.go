package model

// ========== Market Data Models ==========

// Candle OHLCV K线
type Candle struct {
	OpenTime int64   `json:"open_time"` // unix ms
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// BookLevel 订单簿档位 (价格, 数量)
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook 订单簿快照（买卖两侧的 top-N 档位）
type OrderBook struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// MarketSnapshot 单个交易对的市场数据快照
// Status 区分成功抓取和失败（失败的 ticker 本周期被排除）
type MarketSnapshot struct {
	Ticker    string    `json:"ticker"`
	Candles   []Candle  `json:"candles"`
	Book      OrderBook `json:"book"`
	Status    string    `json:"status"` // "success" or "error"
	Error     string    `json:"error,omitempty"`
	Timestamp int64     `json:"ts_ms"`
}

// OK 数据是否可用
func (s *MarketSnapshot) OK() bool {
	return s.Status == "success" && len(s.Candles) > 0
}

// Closes 提取收盘价序列（按时间顺序）
func (s *MarketSnapshot) Closes() []float64 {
	out := make([]float64, 0, len(s.Candles))
	for _, c := range s.Candles {
		out = append(out, c.Close)
	}
	return out
}

// LastClose 最新收盘价
func (s *MarketSnapshot) LastClose() (float64, bool) {
	if len(s.Candles) == 0 {
		return 0, false
	}
	return s.Candles[len(s.Candles)-1].Close, true
}
