package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

// Repo 审计落库：只收交易与周期快照，账本读写留给主存储
type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS trades (
  id TEXT PRIMARY KEY,
  ticker TEXT NOT NULL,
  action TEXT NOT NULL,
  quantity DOUBLE PRECISION NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  pnl DOUBLE PRECISION NOT NULL DEFAULT 0,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_ticker_ts ON trades(ticker, ts_ms);
CREATE TABLE IF NOT EXISTS snapshots (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_ms);
`)
	return err
}

func (r *Repo) LoadPositions(ctx context.Context) ([]model.Position, error) {
	// ledger reads come from the primary store
	return nil, nil
}

func (r *Repo) UpsertPosition(ctx context.Context, pos model.Position) error { return nil }

func (r *Repo) DeletePosition(ctx context.Context, ticker string) error { return nil }

func (r *Repo) AppendTrade(ctx context.Context, t model.Trade) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO trades(id, ticker, action, quantity, price, pnl, ts_ms)
VALUES($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING
`, t.ID, t.Ticker, string(t.Action), t.Quantity, t.Price, t.ProfitLoss, t.Timestamp)
	return err
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ticker string, price float64, ts int64) error {
	// optional: add latest table later
	return nil
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots(ts_ms, payload) VALUES($1, $2)`, ts, payload)
	return err
}

var _ port.Repository = (*Repo)(nil)
