package service

import (
	"errors"
	"math"
	"testing"
)

func steadyCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

// TestRiskComputeBasics 波动率非负、仓位不超上限
func TestRiskComputeBasics(t *testing.T) {
	m := NewRiskModel(1000, 0.05)

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%5) // mildly volatile
	}

	ra, err := m.Compute(closes, 120, 104)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if ra.Volatility < 0 {
		t.Errorf("volatility must be >= 0, got %f", ra.Volatility)
	}
	if ra.PositionSize > 1000 {
		t.Errorf("position size must be <= cap, got %f", ra.PositionSize)
	}
	if math.Abs(ra.StopPrice-104*0.95) > 1e-9 {
		t.Errorf("stop price mismatch: expected %f, got %f", 104*0.95, ra.StopPrice)
	}
}

// TestRiskValuationDiscount 估值低于现价时仓位减半
func TestRiskValuationDiscount(t *testing.T) {
	m := NewRiskModel(1000, 0.05)
	closes := steadyCloses(20, 100)

	full, err := m.Compute(closes, 100, 100)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	half, err := m.Compute(closes, 90, 100)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if math.Abs(full.PositionSize-1000) > 1e-9 {
		t.Errorf("flat history should hit the cap, got %f", full.PositionSize)
	}
	if math.Abs(half.PositionSize-full.PositionSize/2) > 1e-9 {
		t.Errorf("overvalued asset should halve size: full=%f half=%f", full.PositionSize, half.PositionSize)
	}
}

func TestRiskInsufficientHistory(t *testing.T) {
	m := NewRiskModel(1000, 0.05)

	_, err := m.Compute(steadyCloses(19, 100), 100, 100)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestRiskVolatilityShrinksSize(t *testing.T) {
	m := NewRiskModel(1000, 0.05)

	volatile := make([]float64, 20)
	for i := range volatile {
		if i%2 == 0 {
			volatile[i] = 80
		} else {
			volatile[i] = 120
		}
	}

	calm, _ := m.Compute(steadyCloses(20, 100), 100, 100)
	wild, err := m.Compute(volatile, 120, 120)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if wild.PositionSize >= calm.PositionSize {
		t.Errorf("higher volatility should shrink size: calm=%f wild=%f", calm.PositionSize, wild.PositionSize)
	}
}
