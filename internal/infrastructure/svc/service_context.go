package svc

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"mmaker/internal/application/port"
	appservice "mmaker/internal/application/service"
	"mmaker/internal/application/usecase/trader"
	domainservice "mmaker/internal/domain/service"
	"mmaker/internal/infrastructure/config"
	"mmaker/internal/infrastructure/marketdata/binance"
	"mmaker/internal/infrastructure/signals"
	compositerepo "mmaker/internal/infrastructure/storage/composite"
	jsonfilerepo "mmaker/internal/infrastructure/storage/jsonfile"
	postgresrepo "mmaker/internal/infrastructure/storage/postgres"
	redisrepo "mmaker/internal/infrastructure/storage/redis"
	sqliterepo "mmaker/internal/infrastructure/storage/sqlite"
	"mmaker/internal/interfaces/console"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 基础设施层（第一层初始化）
	redisClient *redisclient.Client
	redisRepo   *redisrepo.Repo
	sqliteRepo  *sqliterepo.Repo
	jsonRepo    *jsonfilerepo.Repo
	pgRepo      *postgresrepo.Repo
	ledger      port.Repository

	// 输出端口
	Sink port.Sink

	// 价格源（可选）
	priceFeeds []trader.PriceFeed

	// 资源管理
	closerChain []func() error
}

// New 创建并初始化 ServiceContext
// 这是应用启动的唯一入口点，所有依赖初始化都在这里完成
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		Sink:        console.NewSink(),
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeStorage(); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}

	if cfg.Exchange.Binance.Enabled {
		sc.priceFeeds = append(sc.priceFeeds, binance.NewTickerFeed(cfg.Exchange.Binance.WsURL))
	}

	return sc, nil
}

// initializeStorage 初始化存储层，至少需要一个账本存储
// 组合顺序决定读取来源：sqlite 优先，jsonfile 镜像，postgres 审计
func (sc *ServiceContext) initializeStorage() error {
	var repos []port.Repository

	if sc.Config.Storage.SQLite.Enabled {
		if err := sc.initSQLite(); err != nil {
			return fmt.Errorf("sqlite initialization failed: %w", err)
		}
		repos = append(repos, sc.sqliteRepo)
	}

	if sc.Config.Storage.JSONFile.Enabled {
		if err := sc.initJSONFile(); err != nil {
			return fmt.Errorf("jsonfile initialization failed: %w", err)
		}
		repos = append(repos, sc.jsonRepo)
	}

	if len(repos) == 0 {
		return ErrNoLedgerStore
	}

	if sc.Config.Storage.Redis.Enabled {
		if err := sc.initRedis(); err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
	}

	if sc.Config.Storage.Postgres.Enabled {
		if err := sc.initPostgres(); err != nil {
			return fmt.Errorf("postgres initialization failed: %w", err)
		}
		repos = append(repos, sc.pgRepo)
	}

	if len(repos) == 1 {
		sc.ledger = repos[0]
	} else {
		sc.ledger = compositerepo.New(repos...)
	}
	return nil
}

func (sc *ServiceContext) initSQLite() error {
	repo, err := sqliterepo.New(sc.Config.Storage.SQLite.Path)
	if err != nil {
		return err
	}
	sc.sqliteRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", sc.Config.Storage.SQLite.Path).
		Msg("✓ SQLite initialized")
	return nil
}

func (sc *ServiceContext) initJSONFile() error {
	repo, err := jsonfilerepo.New(sc.Config.Storage.JSONFile.Path)
	if err != nil {
		return err
	}
	sc.jsonRepo = repo

	log.Info().
		Str("path", sc.Config.Storage.JSONFile.Path).
		Msg("✓ JSON ledger initialized")
	return nil
}

func (sc *ServiceContext) initRedis() error {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Storage.Redis.Addr,
		Password: sc.Config.Storage.Redis.Password,
		DB:       sc.Config.Storage.Redis.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	sc.redisClient = rdb
	ttl := time.Duration(sc.Config.Storage.Redis.TTLSeconds) * time.Second

	sc.redisRepo = redisrepo.New(
		rdb,
		sc.Config.Storage.Redis.Prefix,
		ttl,
		sc.Config.Storage.Redis.DecisionStream,
		sc.Config.Storage.Redis.DecisionChan,
	)

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", sc.Config.Storage.Redis.Addr).
		Int("db", sc.Config.Storage.Redis.DB).
		Msg("✓ Redis initialized")
	return nil
}

func (sc *ServiceContext) initPostgres() error {
	repo, err := postgresrepo.New(sc.Config.Storage.Postgres.DSN)
	if err != nil {
		return err
	}
	sc.pgRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("✓ Postgres initialized")
	return nil
}

// Ledger 获取组合后的账本仓储
func (sc *ServiceContext) Ledger() port.Repository {
	return sc.ledger
}

// BuildTraderDeps 构建交易周期服务所需的所有依赖
// 这个方法由 Application 层 UseCase 调用
func (sc *ServiceContext) BuildTraderDeps() trader.ServiceDeps {
	cfg := sc.Config

	var pub port.DecisionPublisher
	if sc.redisRepo != nil {
		pub = sc.redisRepo
	}

	portfolio := appservice.NewPortfolioService(
		sc.ledger,
		cfg.Symbols.List,
		cfg.Signals.BullSentiment,
		cfg.Signals.BearSentiment,
		pub,
	)

	return trader.ServiceDeps{
		Source:        binance.NewRestClient(cfg.Exchange.Binance.RestURL),
		Signals:       signals.NewStaticSignalProvider(),
		Valuation:     signals.NewMarkValuationProvider(),
		Feeds:         sc.priceFeeds,
		Symbols:       cfg.Symbols.List,
		CycleEveryMin: cfg.App.CycleEveryMin,
		Sink:          sc.Sink,
		Repo:          sc.ledger,
		Risk:          domainservice.NewRiskModel(cfg.Risk.SizeCap, cfg.Risk.StopPct),
		Arb:           domainservice.NewStatArb(cfg.Arbitrage.ZEntry),
		Liquidity:     domainservice.NewLiquidityAdjuster(cfg.Liquidity.TargetSpread, cfg.Liquidity.Adjust),
		Allocator:     appservice.NewAllocator(cfg.App.BudgetTotal),
		Portfolio:     portfolio,
	}
}

// Close 关闭 ServiceContext 中的所有资源，应用退出时调用
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	return nil
}
