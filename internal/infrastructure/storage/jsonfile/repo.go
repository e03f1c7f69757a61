package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

// persisted schema: {ticker: {quantity, entry_price, timestamp}}
type positionRecord struct {
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
	Timestamp  int64   `json:"timestamp"`
}

// Repo 人类可读的 JSON 账本 + CSV 交易日志
// 账本整体重写（临时文件 + fsync + rename），交易日志只追加
type Repo struct {
	mu        sync.Mutex
	path      string
	tradesLog string
}

func New(path string) (*Repo, error) {
	if path == "" {
		path = "positions.json"
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Repo{
		path:      path,
		tradesLog: filepath.Join(filepath.Dir(path), "trades.log"),
	}, nil
}

func (r *Repo) Close() error { return nil }

func (r *Repo) LoadPositions(ctx context.Context) ([]model.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(records))
	for t := range records {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]model.Position, 0, len(records))
	for _, t := range tickers {
		rec := records[t]
		out = append(out, model.Position{
			Ticker:     t,
			Quantity:   rec.Quantity,
			EntryPrice: rec.EntryPrice,
			UpdatedAt:  rec.Timestamp,
		})
	}
	return out, nil
}

func (r *Repo) UpsertPosition(ctx context.Context, pos model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	records[pos.Ticker] = positionRecord{
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		Timestamp:  pos.UpdatedAt,
	}
	return r.write(records)
}

func (r *Repo) DeletePosition(ctx context.Context, ticker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	delete(records, ticker)
	return r.write(records)
}

// AppendTrade 一行一笔：ticker,action,quantity,price,ts[,pnl]
func (r *Repo) AppendTrade(ctx context.Context, t model.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%s,%s,%v,%v,%s", t.Ticker, t.Action, t.Quantity, t.Price,
		time.UnixMilli(t.Timestamp).UTC().Format(time.RFC3339))
	if t.Action == model.ActionSell {
		line += fmt.Sprintf(",%v", t.ProfitLoss)
	}

	f, err := os.OpenFile(r.tradesLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return f.Sync()
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ticker string, price float64, ts int64) error {
	// ledger mirror only; latest prices live in sqlite
	return nil
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	return nil
}

// read 文件缺失视为空账本
func (r *Repo) read() (map[string]positionRecord, error) {
	b, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]positionRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	records := map[string]positionRecord{}
	if len(b) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return records, nil
}

func (r *Repo) write(records map[string]positionRecord) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(r.path, b, 0o644)
}

// writeFileAtomic tmp file + fsync + rename, then best-effort dir fsync
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

var _ port.Repository = (*Repo)(nil)
