package port

import (
	"context"

	"mmaker/internal/domain/model"
)

// Repository 账本与审计存储
// 账本（ticker -> Position）必须跨周期持久；每次变更先落盘再返回决策
type Repository interface {
	// Ledger operations
	LoadPositions(ctx context.Context) ([]model.Position, error)
	UpsertPosition(ctx context.Context, pos model.Position) error
	DeletePosition(ctx context.Context, ticker string) error

	// Trade audit log (append-only)
	AppendTrade(ctx context.Context, trade model.Trade) error

	// Latest mark price
	UpsertLatestPrice(ctx context.Context, ticker string, price float64, ts int64) error

	// Cycle snapshots
	InsertSnapshot(ctx context.Context, ts int64, payload string) error

	// Connection management
	Close() error
}

// DecisionPublisher 把已执行的交易决策推给下游消费者（可选能力）
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, decision model.TradeDecision) error
}
