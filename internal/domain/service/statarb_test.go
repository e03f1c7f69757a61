package service

import (
	"errors"
	"testing"

	"mmaker/internal/domain/model"
)

// TestStatArbSignConvention z-score 符号约定：A 突然变贵 => sell，变便宜 => buy
func TestStatArbSignConvention(t *testing.T) {
	s := NewStatArb(2.0)

	// Historical spread hovers around 0, last sample jumps 10 above.
	a := make([]float64, PairWindow)
	b := make([]float64, PairWindow)
	for i := range a {
		a[i] = 100 + float64(i%3)*0.1
		b[i] = 100 + float64(i%3)*0.1
	}
	a[PairWindow-1] += 10

	rich, err := s.Compute("AAA", "BBB", a, b)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if rich.ZScore <= 2 {
		t.Errorf("expected z > 2, got %f", rich.ZScore)
	}
	if rich.Signal != model.SignalSell {
		t.Errorf("expected sell, got %s", rich.Signal)
	}

	// Symmetric case: A drops 10 below the historical spread.
	a[PairWindow-1] -= 20
	cheap, err := s.Compute("AAA", "BBB", a, b)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if cheap.ZScore >= -2 {
		t.Errorf("expected z < -2, got %f", cheap.ZScore)
	}
	if cheap.Signal != model.SignalBuy {
		t.Errorf("expected buy, got %s", cheap.Signal)
	}
}

// TestStatArbConstantSpread 完全相关配对靠 ε 避开零分母
func TestStatArbConstantSpread(t *testing.T) {
	s := NewStatArb(2.0)

	a := steadyCloses(PairWindow, 105)
	b := steadyCloses(PairWindow, 100)

	p, err := s.Compute("AAA", "BBB", a, b)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if p.Signal != model.SignalHold {
		t.Errorf("constant spread should hold, got %s", p.Signal)
	}
	if p.ZScore != 0 {
		t.Errorf("constant spread should have z=0, got %f", p.ZScore)
	}
}

func TestStatArbInsufficientHistory(t *testing.T) {
	s := NewStatArb(2.0)
	_, err := s.Compute("AAA", "BBB", steadyCloses(19, 100), steadyCloses(40, 100))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

// TestStatArbComputeAll 三个 ticker 产生三个无序配对，短历史的被跳过
func TestStatArbComputeAll(t *testing.T) {
	s := NewStatArb(2.0)

	closes := map[string][]float64{
		"AAA": steadyCloses(25, 100),
		"BBB": steadyCloses(25, 101),
		"CCC": steadyCloses(25, 102),
		"DDD": steadyCloses(5, 99), // too short, every pair with it is skipped
	}

	pairs := s.ComputeAll(closes)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}

	// Deterministic lexical order.
	if pairs[0].TickerA != "AAA" || pairs[0].TickerB != "BBB" {
		t.Errorf("unexpected first pair: %s/%s", pairs[0].TickerA, pairs[0].TickerB)
	}
}

func TestSignalForInvertsBSide(t *testing.T) {
	pairs := []model.ArbitragePair{
		{TickerA: "AAA", TickerB: "BBB", ZScore: 3.2, Signal: model.SignalSell},
	}

	if got := SignalFor("AAA", pairs); got != model.SignalSell {
		t.Errorf("A side: expected sell, got %s", got)
	}
	if got := SignalFor("BBB", pairs); got != model.SignalBuy {
		t.Errorf("B side: expected buy, got %s", got)
	}
	if got := SignalFor("CCC", pairs); got != model.SignalHold {
		t.Errorf("uninvolved ticker: expected hold, got %s", got)
	}
}
