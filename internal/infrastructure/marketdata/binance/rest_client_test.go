package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const klinesFixture = `[
[1700000000000,"50000.0","50500.0","49800.0","50200.0","120.5",1700003599999,"0",0,"0","0","0"],
[1700003600000,"50200.0","50800.0","50100.0","50600.0","98.2",1700007199999,"0",0,"0","0","0"]
]`

const depthFixture = `{
"lastUpdateId": 1,
"bids": [["50100.0","1.5"],["50050.0","2.0"]],
"asks": [["50200.0","1.2"],["50250.0","3.1"]]
}`

func TestParseKlines(t *testing.T) {
	candles, err := parseKlines([]byte(klinesFixture))
	if err != nil {
		t.Fatalf("parseKlines: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	c := candles[0]
	if c.OpenTime != 1700000000000 {
		t.Errorf("open time = %d", c.OpenTime)
	}
	if c.Open != 50000 || c.High != 50500 || c.Low != 49800 || c.Close != 50200 || c.Volume != 120.5 {
		t.Errorf("unexpected candle: %+v", c)
	}
	if candles[1].Close != 50600 {
		t.Errorf("second close = %v, want 50600", candles[1].Close)
	}
}

func TestParseKlinesShortRow(t *testing.T) {
	if _, err := parseKlines([]byte(`[[1700000000000,"1","2"]]`)); err == nil {
		t.Fatal("expected error for short kline row")
	}
}

func TestParseDepth(t *testing.T) {
	book, err := parseDepth([]byte(depthFixture))
	if err != nil {
		t.Fatalf("parseDepth: %v", err)
	}
	if len(book.Bids) != 2 || len(book.Asks) != 2 {
		t.Fatalf("expected 2x2 levels, got %d/%d", len(book.Bids), len(book.Asks))
	}
	if book.Bids[0].Price != 50100 || book.Bids[0].Size != 1.5 {
		t.Errorf("unexpected best bid: %+v", book.Bids[0])
	}
	if book.Asks[0].Price != 50200 || book.Asks[0].Size != 1.2 {
		t.Errorf("unexpected best ask: %+v", book.Asks[0])
	}
}

func TestFetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v3/klines"):
			w.Write([]byte(klinesFixture))
		case strings.HasPrefix(r.URL.Path, "/api/v3/depth"):
			w.Write([]byte(depthFixture))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL)
	snap := c.FetchSnapshot(context.Background(), "BTCUSDT")
	if !snap.OK() {
		t.Fatalf("snapshot not ok: status=%s err=%s", snap.Status, snap.Error)
	}
	if last, _ := snap.LastClose(); last != 50600 {
		t.Errorf("last close = %v, want 50600", last)
	}
	if len(snap.Book.Asks) != 2 {
		t.Errorf("asks = %d, want 2", len(snap.Book.Asks))
	}
}

func TestFetchSnapshotUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL)
	snap := c.FetchSnapshot(context.Background(), "NOPE")
	if snap.OK() {
		t.Fatal("expected error snapshot")
	}
	if snap.Status != "error" || snap.Error == "" {
		t.Errorf("status=%q error=%q", snap.Status, snap.Error)
	}
}
