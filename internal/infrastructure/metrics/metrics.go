package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmaker_cycles_total", Help: "Evaluation cycles completed"})
	CycleErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmaker_cycle_errors_total", Help: "Cycles aborted by a persistence or allocation error"})
	TradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mmaker_trades_total", Help: "Executed trades by action"}, []string{"action"})
	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mmaker_decisions_total", Help: "Per-ticker decisions by status"}, []string{"status"})
	LedgerWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmaker_ledger_write_failures_total", Help: "Position ledger writes that failed"})
	OpenPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mmaker_open_positions", Help: "Tickers currently held"})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mmaker_cycle_duration_seconds",
		Help:    "Wall time of one full evaluation cycle",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10)})
)

func init() {
	prometheus.MustRegister(
		CyclesTotal, CycleErrors, TradesTotal, DecisionsTotal,
		LedgerWriteFailures, OpenPositions, CycleDuration,
	)
}

// Serve 在独立 goroutine 起 /metrics，addr 为空则不启动
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics endpoint up")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}
