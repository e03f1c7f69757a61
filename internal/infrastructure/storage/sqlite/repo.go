package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) GetDB() *sql.DB {
	return r.db
}

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS positions (
  ticker TEXT PRIMARY KEY,
  quantity REAL NOT NULL,
  entry_price REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_positions_ts ON positions(ts_ms);

CREATE TABLE IF NOT EXISTS trades (
  id TEXT PRIMARY KEY,
  ticker TEXT NOT NULL,
  action TEXT NOT NULL,
  quantity REAL NOT NULL,
  price REAL NOT NULL,
  profit_loss REAL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker);
CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts_ms);

CREATE TABLE IF NOT EXISTS prices (
  ticker TEXT PRIMARY KEY,
  price REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prices_ts ON prices(ts_ms);

CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_ms);
`)
	return err
}

func (r *Repo) LoadPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker, quantity, entry_price, ts_ms FROM positions ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.Ticker, &p.Quantity, &p.EntryPrice, &p.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *Repo) UpsertPosition(ctx context.Context, pos model.Position) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO positions(ticker, quantity, entry_price, ts_ms, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
		quantity=excluded.quantity, entry_price=excluded.entry_price, ts_ms=excluded.ts_ms, updated_at=excluded.updated_at
	`, pos.Ticker, pos.Quantity, pos.EntryPrice, pos.UpdatedAt, pos.UpdatedAt, pos.UpdatedAt)
	return err
}

func (r *Repo) DeletePosition(ctx context.Context, ticker string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE ticker=?`, ticker)
	return err
}

// GetPosition 查询单个持仓，不存在返回 (zero, false)
func (r *Repo) GetPosition(ctx context.Context, ticker string) (model.Position, bool, error) {
	var p model.Position
	err := r.db.QueryRowContext(ctx, `SELECT ticker, quantity, entry_price, ts_ms FROM positions WHERE ticker=?`, ticker).
		Scan(&p.Ticker, &p.Quantity, &p.EntryPrice, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, false, nil
	}
	if err != nil {
		return model.Position{}, false, err
	}
	return p, true, nil
}

func (r *Repo) AppendTrade(ctx context.Context, t model.Trade) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trades(id, ticker, action, quantity, price, profit_loss, ts_ms, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Ticker, string(t.Action), t.Quantity, t.Price, t.ProfitLoss, t.Timestamp, time.Now().UnixMilli())
	return err
}

// ListTrades 最近的审计记录，新的在前
func (r *Repo) ListTrades(ctx context.Context, limit int) ([]model.Trade, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, ticker, action, quantity, price, profit_loss, ts_ms FROM trades ORDER BY ts_ms DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		var t model.Trade
		var action string
		if err := rows.Scan(&t.ID, &t.Ticker, &action, &t.Quantity, &t.Price, &t.ProfitLoss, &t.Timestamp); err != nil {
			return nil, err
		}
		t.Action = model.TradeAction(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ticker string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prices(ticker, price, ts_ms, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
		price=excluded.price, ts_ms=excluded.ts_ms
	`, ticker, price, ts, ts)
	return err
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots(ts_ms, payload, created_at) VALUES(?, ?, ?)`, ts, payload, ts)
	return err
}

var _ port.Repository = (*Repo)(nil)
