package presentation

import (
	"fmt"
	"strings"

	"mmaker/internal/domain/model"
)

// ANSI color codes
const (
	ansiReset    = "\033[0m"
	ansiRed      = "\033[31m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

// Colorize applies ANSI color to a string
func Colorize(s, color string) string {
	return color + s + ansiReset
}

// PriceCell 实时行中单个 ticker 的显示状态
type PriceCell struct {
	Str    string
	Dir    int // +1 up, -1 down, 0 flat
	Seen   bool
	Parsed bool
}

// Renderer 终端渲染：实时价格行 + 周期报告行
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderLive 单行实时价格（\r 覆盖上一行）
func (r *Renderer) RenderLive(symbols []string, cells map[string]PriceCell) string {
	var sb strings.Builder
	sb.WriteString("\r")
	sb.WriteString(Colorize("[MMAKER] ", ansiDim))

	for i, sym := range symbols {
		if i > 0 {
			sb.WriteString(Colorize("  ||  ", ansiDim))
		}

		cell := cells[sym]
		price := "--"
		if cell.Seen && cell.Str != "" {
			price = cell.Str
		}
		col := ansiYellow
		if cell.Parsed {
			switch {
			case cell.Dir > 0:
				col = ansiGreen
			case cell.Dir < 0:
				col = ansiRed
			}
		}

		sb.WriteString(sym)
		sb.WriteString(" ")
		sb.WriteString(Colorize(price, col))
	}

	sb.WriteString(ansiClearEOL)
	return sb.String()
}

// RenderReport 一条周期报告：各 ticker 的权重和决策
func (r *Renderer) RenderReport(rep model.CycleReport, symbols []string) string {
	var sb strings.Builder
	sb.WriteString(Colorize("[CYCLE] ", ansiDim))

	if rep.Status == "error" {
		sb.WriteString(Colorize("aborted: "+rep.Error, ansiRed))
		return sb.String()
	}

	first := true
	for _, sym := range symbols {
		d, ok := rep.Decisions[sym]
		if !ok {
			continue
		}
		if !first {
			sb.WriteString(Colorize("  ||  ", ansiDim))
		}
		first = false

		sb.WriteString(sym)
		if alloc, ok := rep.Allocations[sym]; ok {
			sb.WriteString(fmt.Sprintf(" w=%.2f", alloc.Weight))
		}
		sb.WriteString(" ")
		sb.WriteString(renderDecision(d))
	}
	return sb.String()
}

func renderDecision(d model.TradeDecision) string {
	switch d.Status {
	case model.StatusSuccess:
		col := ansiGreen
		if d.Action == model.ActionSell {
			col = ansiRed
		}
		s := fmt.Sprintf("%s %.4f@%.2f", d.Action, d.Quantity, d.Price)
		if d.Action == model.ActionSell {
			s += fmt.Sprintf(" pnl=%+.2f", d.ProfitLoss)
		}
		return Colorize(s, col)
	case model.StatusHold:
		return Colorize(fmt.Sprintf("hold pnl=%+.2f", d.ProfitLoss), ansiYellow)
	case model.StatusError:
		return Colorize("error: "+d.Reason, ansiRed)
	default:
		return Colorize("skip", ansiDim)
	}
}
