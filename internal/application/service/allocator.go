package service

import (
	"fmt"

	"mmaker/internal/domain/model"
	domainservice "mmaker/internal/domain/service"
)

const defaultBudget = 5000.0

// Allocator 分配过程：按风险调整仓位规模把总预算按比例分给各 ticker
type Allocator struct {
	budget float64
}

func NewAllocator(totalBudget float64) *Allocator {
	if totalBudget <= 0 {
		totalBudget = defaultBudget
	}
	return &Allocator{budget: totalBudget}
}

func (a *Allocator) Budget() float64 { return a.budget }

// Allocate 计算本周期的资金分配
// weight[t] = position_size[t] / Σ position_size；总规模为零返回 ErrZeroDenominator，本周期不交易
func (a *Allocator) Allocate(risk map[string]model.RiskAssessment) (map[string]model.Allocation, error) {
	total := 0.0
	for _, ra := range risk {
		total += ra.PositionSize
	}
	if total == 0 {
		return nil, fmt.Errorf("allocation pass: %w", domainservice.ErrZeroDenominator)
	}

	out := make(map[string]model.Allocation, len(risk))
	for t, ra := range risk {
		weight := ra.PositionSize / total
		out[t] = model.Allocation{
			Weight:    weight,
			Amount:    weight * a.budget,
			StopPrice: ra.StopPrice,
		}
	}
	return out, nil
}
