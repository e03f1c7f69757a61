package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

const (
	defaultKlineLimit = 20
	defaultDepthLimit = 10
	klineInterval     = "1h"
)

// RestClient Binance 现货 REST 客户端：K线 + 订单簿
type RestClient struct {
	baseURL    string
	klineLimit int
	depthLimit int
	client     *http.Client
}

func NewRestClient(baseURL string) *RestClient {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	return &RestClient{
		baseURL:    baseURL,
		klineLimit: defaultKlineLimit,
		depthLimit: defaultDepthLimit,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchSnapshot 抓取单个 ticker 的 K线与盘口
// 任一请求失败整个快照标记为 error，该 ticker 本周期跳过
func (c *RestClient) FetchSnapshot(ctx context.Context, ticker string) model.MarketSnapshot {
	snap := model.MarketSnapshot{
		Ticker:    ticker,
		Timestamp: time.Now().UnixMilli(),
	}

	candles, err := c.fetchKlines(ctx, ticker)
	if err != nil {
		snap.Status = "error"
		snap.Error = err.Error()
		return snap
	}
	book, err := c.fetchDepth(ctx, ticker)
	if err != nil {
		snap.Status = "error"
		snap.Error = err.Error()
		return snap
	}

	snap.Candles = candles
	snap.Book = book
	snap.Status = "success"
	return snap
}

func (c *RestClient) fetchKlines(ctx context.Context, symbol string) ([]model.Candle, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		c.baseURL, symbol, klineInterval, c.klineLimit)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

func (c *RestClient) fetchDepth(ctx context.Context, symbol string) (model.OrderBook, error) {
	url := fmt.Sprintf("%s/api/v3/depth?symbol=%s&limit=%d", c.baseURL, symbol, c.depthLimit)
	body, err := c.get(ctx, url)
	if err != nil {
		return model.OrderBook{}, err
	}
	return parseDepth(body)
}

func (c *RestClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance api error: %d %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

// parseKlines Binance 返回混合数组：
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
func parseKlines(body []byte) ([]model.Candle, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse klines: %w", err)
	}

	out := make([]model.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row too short: %d fields", len(row))
		}
		var c model.Candle
		if err := json.Unmarshal(row[0], &c.OpenTime); err != nil {
			return nil, fmt.Errorf("kline open time: %w", err)
		}
		fields := []struct {
			raw json.RawMessage
			dst *float64
		}{
			{row[1], &c.Open},
			{row[2], &c.High},
			{row[3], &c.Low},
			{row[4], &c.Close},
			{row[5], &c.Volume},
		}
		for _, f := range fields {
			v, err := parseQuotedFloat(f.raw)
			if err != nil {
				return nil, fmt.Errorf("kline field: %w", err)
			}
			*f.dst = v
		}
		out = append(out, c)
	}
	return out, nil
}

type depthResp struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

func parseDepth(body []byte) (model.OrderBook, error) {
	var resp depthResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.OrderBook{}, fmt.Errorf("parse depth: %w", err)
	}

	book := model.OrderBook{
		Bids: make([]model.BookLevel, 0, len(resp.Bids)),
		Asks: make([]model.BookLevel, 0, len(resp.Asks)),
	}
	for _, lv := range resp.Bids {
		level, err := parseLevel(lv)
		if err != nil {
			return model.OrderBook{}, err
		}
		book.Bids = append(book.Bids, level)
	}
	for _, lv := range resp.Asks {
		level, err := parseLevel(lv)
		if err != nil {
			return model.OrderBook{}, err
		}
		book.Asks = append(book.Asks, level)
	}
	return book, nil
}

func parseLevel(lv [2]string) (model.BookLevel, error) {
	price, err := strconv.ParseFloat(lv[0], 64)
	if err != nil {
		return model.BookLevel{}, fmt.Errorf("depth price %q: %w", lv[0], err)
	}
	size, err := strconv.ParseFloat(lv[1], 64)
	if err != nil {
		return model.BookLevel{}, fmt.Errorf("depth size %q: %w", lv[1], err)
	}
	return model.BookLevel{Price: price, Size: size}, nil
}

func parseQuotedFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// some fields arrive as bare numbers
		var f float64
		if err2 := json.Unmarshal(raw, &f); err2 == nil {
			return f, nil
		}
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

var _ port.MarketDataSource = (*RestClient)(nil)
