package sqlite

import (
	"context"
	"os"
	"testing"

	"mmaker/internal/domain/model"
)

func TestSQLiteRepoPositionLifecycle(t *testing.T) {
	dbPath := "test_ledger.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	pos := model.Position{Ticker: "BTCUSDT", Quantity: 1.5, EntryPrice: 40000.0, UpdatedAt: 1234567890}

	if err := repo.UpsertPosition(ctx, pos); err != nil {
		t.Fatalf("UpsertPosition failed: %v", err)
	}

	got, ok, err := repo.GetPosition(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if !ok {
		t.Fatal("expected position to exist")
	}
	if got.Quantity != 1.5 || got.EntryPrice != 40000.0 {
		t.Errorf("expected quantity=1.5, entryPrice=40000.0, got %v, %v", got.Quantity, got.EntryPrice)
	}

	// Upsert overwrites.
	pos.Quantity = 2.0
	if err := repo.UpsertPosition(ctx, pos); err != nil {
		t.Fatalf("UpsertPosition overwrite failed: %v", err)
	}
	got, _, _ = repo.GetPosition(ctx, "BTCUSDT")
	if got.Quantity != 2.0 {
		t.Errorf("expected overwritten quantity 2.0, got %v", got.Quantity)
	}

	if err := repo.DeletePosition(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("DeletePosition failed: %v", err)
	}
	_, ok, err = repo.GetPosition(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("GetPosition after delete failed: %v", err)
	}
	if ok {
		t.Error("expected position to be gone")
	}
}

func TestSQLiteRepoLoadPositions(t *testing.T) {
	dbPath := "test_load.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	repo.UpsertPosition(ctx, model.Position{Ticker: "BTCUSDT", Quantity: 1.5, EntryPrice: 40000.0, UpdatedAt: 1})
	repo.UpsertPosition(ctx, model.Position{Ticker: "ETHUSDT", Quantity: 10.0, EntryPrice: 2000.0, UpdatedAt: 2})

	positions, err := repo.LoadPositions(ctx)
	if err != nil {
		t.Fatalf("LoadPositions failed: %v", err)
	}
	if len(positions) != 2 {
		t.Errorf("expected 2 positions, got %d", len(positions))
	}
}

func TestSQLiteRepoAppendTrade(t *testing.T) {
	dbPath := "test_trades.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	trade := model.Trade{
		ID:         "t-1",
		Ticker:     "BTCUSDT",
		Action:     model.ActionSell,
		Quantity:   1.0,
		Price:      94.0,
		ProfitLoss: -6.0,
		Timestamp:  1234567890,
	}
	if err := repo.AppendTrade(ctx, trade); err != nil {
		t.Fatalf("AppendTrade failed: %v", err)
	}

	trades, err := repo.ListTrades(ctx, 10)
	if err != nil {
		t.Fatalf("ListTrades failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].ProfitLoss != -6.0 || trades[0].Action != model.ActionSell {
		t.Errorf("trade roundtrip mismatch: %+v", trades[0])
	}
}

func TestSQLiteRepoSnapshotAndPrice(t *testing.T) {
	dbPath := "test_snap.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.UpsertLatestPrice(ctx, "BTCUSDT", 45000.0, 1234567890); err != nil {
		t.Fatalf("UpsertLatestPrice failed: %v", err)
	}
	payload := `{"decisions":{"BTCUSDT":{"status":"hold"}}}`
	if err := repo.InsertSnapshot(ctx, 1234567890, payload); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
}
