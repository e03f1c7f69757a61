package container

import (
	"context"
	"os"
	"testing"
	"time"

	"mmaker/internal/application/service"
	"mmaker/internal/domain/model"
	sqliterepo "mmaker/internal/infrastructure/storage/sqlite"
)

func TestContainerLazyServices(t *testing.T) {
	dbPath := "test_container.db"
	defer os.Remove(dbPath)

	repo, err := sqliterepo.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	c := New(repo, nil, []string{"BTCUSDT"}, 5000, 75, 25)
	defer c.Close()

	if c.Repository() == nil {
		t.Error("expected repository, got nil")
	}
	if c.Allocator() == nil {
		t.Error("expected allocator, got nil")
	}
	if c.Allocator() != c.Allocator() {
		t.Error("allocator should be constructed once")
	}
	if c.Portfolio() != c.Portfolio() {
		t.Error("portfolio should be constructed once")
	}
}

func TestContainerPortfolioWorkflow(t *testing.T) {
	dbPath := "test_workflow.db"
	defer os.Remove(dbPath)

	repo, err := sqliterepo.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	c := New(repo, nil, []string{"BTCUSDT"}, 5000, 75, 25)
	defer c.Close()

	ctx := context.Background()
	portfolio := c.Portfolio()
	if err := portfolio.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	decision, err := portfolio.Evaluate(ctx, evalBuyInput())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Status != model.StatusSuccess || decision.Action != model.ActionBuy {
		t.Fatalf("unexpected decision: %+v", decision)
	}

	// the position must survive a fresh restore from the shared repo
	fresh := New(repo, nil, []string{"BTCUSDT"}, 5000, 75, 25).Portfolio()
	if err := fresh.Restore(ctx); err != nil {
		t.Fatalf("second Restore failed: %v", err)
	}
	pos, ok := fresh.Position("BTCUSDT")
	if !ok || pos.Quantity <= 0 {
		t.Errorf("expected restored position, got %+v ok=%v", pos, ok)
	}
}

func evalBuyInput() service.EvalInput {
	return service.EvalInput{
		Ticker:       "BTCUSDT",
		CurrentPrice: 50000,
		Allocation:   model.Allocation{Weight: 1, Amount: 2500, StopPrice: 47500},
		Signals:      model.SignalSet{Quant: model.SignalBuy, SentimentScore: 80},
		ArbSignal:    model.SignalHold,
		Now:          time.Now(),
	}
}
