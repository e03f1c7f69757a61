package service

import (
	"errors"
	"math"
	"testing"

	"mmaker/internal/domain/model"
	domainservice "mmaker/internal/domain/service"
)

// TestAllocateWeightsSumToOne 权重之和 ≈ 1，金额按预算分配
func TestAllocateWeightsSumToOne(t *testing.T) {
	a := NewAllocator(5000)

	risk := map[string]model.RiskAssessment{
		"BTCUSDT": {PositionSize: 800, StopPrice: 95},
		"ETHUSDT": {PositionSize: 600, StopPrice: 47.5},
		"SOLUSDT": {PositionSize: 400, StopPrice: 9.5},
	}

	allocs, err := a.Allocate(risk)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	sum := 0.0
	amount := 0.0
	for _, al := range allocs {
		sum += al.Weight
		amount += al.Amount
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights must sum to 1, got %.12f", sum)
	}
	if math.Abs(amount-5000) > 1e-6 {
		t.Errorf("amounts must sum to the budget, got %f", amount)
	}

	// Proportionality: BTC carries 800/1800 of the budget.
	want := 800.0 / 1800.0 * 5000
	if math.Abs(allocs["BTCUSDT"].Amount-want) > 1e-6 {
		t.Errorf("expected BTC amount %f, got %f", want, allocs["BTCUSDT"].Amount)
	}
	if allocs["BTCUSDT"].StopPrice != 95 {
		t.Errorf("stop price must be carried through, got %f", allocs["BTCUSDT"].StopPrice)
	}
}

// TestAllocateZeroTotal 总规模为零 => 分配错误，不交易
func TestAllocateZeroTotal(t *testing.T) {
	a := NewAllocator(5000)

	_, err := a.Allocate(map[string]model.RiskAssessment{
		"BTCUSDT": {PositionSize: 0},
		"ETHUSDT": {PositionSize: 0},
	})
	if !errors.Is(err, domainservice.ErrZeroDenominator) {
		t.Fatalf("expected ErrZeroDenominator, got %v", err)
	}
}

func TestAllocateEmptyUniverse(t *testing.T) {
	a := NewAllocator(5000)
	if _, err := a.Allocate(nil); err == nil {
		t.Fatal("empty risk set must fail the allocation pass")
	}
}
