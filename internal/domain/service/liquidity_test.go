package service

import (
	"errors"
	"math"
	"testing"

	"mmaker/internal/domain/model"
)

func TestLiquidityPassthrough(t *testing.T) {
	l := NewLiquidityAdjuster(0.01, 0.005)

	book := model.OrderBook{
		Bids: []model.BookLevel{{Price: 100.0, Size: 2}, {Price: 99.9, Size: 3}},
		Asks: []model.BookLevel{{Price: 100.5, Size: 1}, {Price: 100.6, Size: 4}},
	}

	q, err := l.Compute(book)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// 0.5% spread is under the 1% target: quote passes through unchanged.
	if q.Bid != 100.0 || q.Ask != 100.5 {
		t.Errorf("expected passthrough quote, got bid=%f ask=%f", q.Bid, q.Ask)
	}
	if math.Abs(q.Depth-10) > 1e-9 {
		t.Errorf("expected depth 10, got %f", q.Depth)
	}
}

// TestLiquidityWideBook 点差超标时买价下移、卖价上移
func TestLiquidityWideBook(t *testing.T) {
	l := NewLiquidityAdjuster(0.01, 0.005)

	book := model.OrderBook{
		Bids: []model.BookLevel{{Price: 100.0, Size: 1}},
		Asks: []model.BookLevel{{Price: 103.0, Size: 1}},
	}

	q, err := l.Compute(book)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if math.Abs(q.Bid-100.0*0.995) > 1e-9 {
		t.Errorf("expected widened bid %f, got %f", 100.0*0.995, q.Bid)
	}
	if math.Abs(q.Ask-103.0*1.005) > 1e-9 {
		t.Errorf("expected widened ask %f, got %f", 103.0*1.005, q.Ask)
	}
	if math.Abs(q.Spread-0.03) > 1e-9 {
		t.Errorf("expected spread 0.03, got %f", q.Spread)
	}
}

func TestLiquidityEmptySide(t *testing.T) {
	l := NewLiquidityAdjuster(0.01, 0.005)

	_, err := l.Compute(model.OrderBook{
		Asks: []model.BookLevel{{Price: 100.5, Size: 1}},
	})
	if !errors.Is(err, ErrInvalidMarketData) {
		t.Fatalf("expected ErrInvalidMarketData, got %v", err)
	}
}
