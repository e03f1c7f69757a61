package model

// ========== Portfolio Models ==========

// Position 持仓（账本中每 ticker 一条，数量归零即删除）
type Position struct {
	Ticker     string  `json:"ticker"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"` // 成交量加权平均买入价
	UpdatedAt  int64   `json:"timestamp"`   // unix ms, 最后一次变更时间
}

// Allocation 资金分配（每周期重算，不持久化）
type Allocation struct {
	Weight    float64 `json:"weight"` // [0,1], 所有有效 ticker 之和 ≈ 1
	Amount    float64 `json:"amount"` // 预算货币金额 = weight * total_budget
	StopPrice float64 `json:"stop_price"`
}

// RiskAssessment 风险模型输出
type RiskAssessment struct {
	PositionSize float64 `json:"position_size"` // 货币单位，有上限
	StopPrice    float64 `json:"stop_price"`
	Volatility   float64 `json:"volatility"` // std/mean, 无量纲
}

// ArbitragePair 配对统计套利信号
type ArbitragePair struct {
	TickerA string  `json:"ticker_a"`
	TickerB string  `json:"ticker_b"`
	ZScore  float64 `json:"z_score"`
	Signal  Signal  `json:"signal"` // buy: A 相对便宜; sell: A 相对贵
}

// LiquidityQuote 流动性调整后的报价
type LiquidityQuote struct {
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Spread float64 `json:"spread"` // (best_ask-best_bid)/best_bid
	Depth  float64 `json:"depth"`  // 两侧挂单量之和
}

// DecisionStatus 决策结果状态
type DecisionStatus string

const (
	StatusSuccess DecisionStatus = "success"
	StatusHold    DecisionStatus = "hold"
	StatusSkipped DecisionStatus = "skipped"
	StatusError   DecisionStatus = "error"
)

// TradeAction 决策动作
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
	ActionNone TradeAction = "none"
)

// TradeDecision 单 ticker 单周期的决策结果
type TradeDecision struct {
	Ticker     string         `json:"ticker"`
	Status     DecisionStatus `json:"status"`
	Action     TradeAction    `json:"action"`
	Quantity   float64        `json:"quantity,omitempty"`
	Price      float64        `json:"price,omitempty"`
	ProfitLoss float64        `json:"profit_loss"`         // 卖出为已实现盈亏，持有为未实现盈亏
	Position   *Position      `json:"position,omitempty"`  // 决策后的持仓快照，无持仓为 nil
	Reason     string         `json:"reason,omitempty"`    // hold/skip/error 的说明
}

// Trade 审计日志中的一笔已执行交易
type Trade struct {
	ID         string      `json:"id"`
	Ticker     string      `json:"ticker"`
	Action     TradeAction `json:"action"`
	Quantity   float64     `json:"quantity"`
	Price      float64     `json:"price"`
	ProfitLoss float64     `json:"profit_loss,omitempty"` // 仅卖出
	Timestamp  int64       `json:"ts_ms"`
}

// CycleReport 一个评估周期的完整输出
type CycleReport struct {
	Timestamp   int64                    `json:"ts_ms"`
	Allocations map[string]Allocation    `json:"allocations"`
	Decisions   map[string]TradeDecision `json:"decisions"`
	Status      string                   `json:"status"` // "success" or "error"
	Error       string                   `json:"error,omitempty"`
}
