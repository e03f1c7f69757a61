package trader

import (
	"strconv"
	"strings"
	"sync"

	"mmaker/internal/application/port"
	"mmaker/presentation"
)

type pxState struct {
	str   string
	num   float64
	has   bool
	dir   int
	seen  bool
	parse bool
}

// State 周期间隙的实时价格板
type State struct {
	mu sync.Mutex

	order []string
	px    map[string]*pxState
}

func NewState(symbols []string) *State {
	order := make([]string, 0, len(symbols))
	px := make(map[string]*pxState, len(symbols))
	for _, s := range symbols {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		order = append(order, u)
		px[u] = &pxState{}
	}
	return &State{order: order, px: px}
}

func (s *State) Symbols() []string { return s.order }

// Apply 应用一条价格更新，返回显示是否需要刷新
func (s *State) Apply(t port.Tick) bool {
	ticker := strings.ToUpper(strings.TrimSpace(t.Ticker))
	price := strings.TrimSpace(t.PriceStr)
	if ticker == "" || price == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.px[ticker]
	if ps == nil {
		return false
	}
	if ps.str == price {
		ps.seen = true
		return false
	}

	ps.str = price
	ps.seen = true

	n, err := strconv.ParseFloat(price, 64)
	if err != nil {
		ps.parse = false
		ps.dir = 0
		return true
	}

	ps.parse = true
	if !ps.has {
		ps.has = true
		ps.num = n
		ps.dir = 0
		return true
	}

	prev := ps.num
	switch {
	case n > prev:
		ps.dir = +1
	case n < prev:
		ps.dir = -1
	default:
		ps.dir = 0
	}
	ps.num = n
	return true
}

// Latest 最近一次成功解析的价格
func (s *State) Latest(ticker string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.px[strings.ToUpper(strings.TrimSpace(ticker))]
	if ps == nil || !ps.has {
		return 0, false
	}
	return ps.num, true
}

// Cells 渲染用快照
func (s *State) Cells() map[string]presentation.PriceCell {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]presentation.PriceCell, len(s.px))
	for t, ps := range s.px {
		out[t] = presentation.PriceCell{
			Str:    ps.str,
			Dir:    ps.dir,
			Seen:   ps.seen,
			Parsed: ps.parse,
		}
	}
	return out
}
