package config

import (
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		CycleEveryMin int     `toml:"cycle_every_min"`
		BudgetTotal   float64 `toml:"budget_total"`
		MetricsAddr   string  `toml:"metrics_addr"` // empty disables the /metrics endpoint
	} `toml:"app"`

	Symbols struct {
		List []string `toml:"list"`
	} `toml:"symbols"`

	Risk struct {
		SizeCap float64 `toml:"size_cap"`
		StopPct float64 `toml:"stop_pct"`
	} `toml:"risk"`

	Arbitrage struct {
		ZEntry float64 `toml:"z_entry"`
	} `toml:"arbitrage"`

	Liquidity struct {
		TargetSpread float64 `toml:"target_spread"`
		Adjust       float64 `toml:"adjust"`
	} `toml:"liquidity"`

	Signals struct {
		BullSentiment float64 `toml:"bull_sentiment"`
		BearSentiment float64 `toml:"bear_sentiment"`
	} `toml:"signals"`

	Exchange struct {
		Binance struct {
			Enabled bool   `toml:"enabled"`
			RestURL string `toml:"rest_url"` // e.g. https://api.binance.com
			WsURL   string `toml:"ws_url"`   // e.g. wss://stream.binance.com:9443
		} `toml:"binance"`
	} `toml:"exchange"`

	Storage struct {
		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		JSONFile struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"jsonfile"`

		Redis struct {
			Enabled        bool   `toml:"enabled"`
			Addr           string `toml:"addr"`
			Password       string `toml:"password"`
			DB             int    `toml:"db"`
			Prefix         string `toml:"prefix"`
			TTLSeconds     int    `toml:"ttl_seconds"`
			DecisionStream string `toml:"decision_stream"`
			DecisionChan   string `toml:"decision_channel"`
		} `toml:"redis"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"storage"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.CycleEveryMin <= 0 {
		cfg.App.CycleEveryMin = 5
	}
	if cfg.App.BudgetTotal <= 0 {
		cfg.App.BudgetTotal = 5000
	}
	if cfg.Risk.SizeCap <= 0 {
		cfg.Risk.SizeCap = 1000
	}
	if cfg.Risk.StopPct <= 0 {
		cfg.Risk.StopPct = 0.05
	}
	if cfg.Arbitrage.ZEntry <= 0 {
		cfg.Arbitrage.ZEntry = 2.0
	}
	if cfg.Liquidity.TargetSpread <= 0 {
		cfg.Liquidity.TargetSpread = 0.01
	}
	if cfg.Liquidity.Adjust <= 0 {
		cfg.Liquidity.Adjust = 0.005
	}
	if cfg.Signals.BullSentiment <= 0 {
		cfg.Signals.BullSentiment = 75
	}
	if cfg.Signals.BearSentiment <= 0 {
		cfg.Signals.BearSentiment = 25
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/mmaker.db"
	}
	if cfg.Storage.JSONFile.Path == "" {
		cfg.Storage.JSONFile.Path = "data/positions.json"
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.List = normalizeSymbols(cfg.Symbols.List)
	if len(cfg.Symbols.List) == 0 {
		return errors.New("symbols.list is empty")
	}

	if cfg.Risk.StopPct >= 1 {
		return errors.New("risk.stop_pct must be below 1")
	}
	if cfg.Signals.BearSentiment >= cfg.Signals.BullSentiment {
		return errors.New("signals.bear_sentiment must be below bull_sentiment")
	}

	if cfg.Exchange.Binance.Enabled {
		if strings.TrimSpace(cfg.Exchange.Binance.RestURL) == "" {
			return errors.New("exchange.binance.rest_url empty but enabled")
		}
		if strings.TrimSpace(cfg.Exchange.Binance.WsURL) == "" {
			return errors.New("exchange.binance.ws_url empty but enabled")
		}
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	return nil
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
