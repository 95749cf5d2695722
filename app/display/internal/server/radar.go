package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/stock_radar/app/display/internal/conf"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/config"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/engine"
	srLogger "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/logger"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
	marketFactory "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market/factory"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/storage"
)

// toRadarConfig 将 internal/conf.Radar 转换为 pkg/config.Config
func toRadarConfig(c *conf.Radar) *config.Config {
	cfg := &config.Config{
		Watchlist:   c.Watchlist,
		Interval:    c.Interval,
		UserPersona: c.UserPersona,
	}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL: c.Llm.BaseUrl,
			APIKey:  c.Llm.ApiKey,
			Model:   c.Llm.Model,
		}
	}
	if c.Market != nil {
		cfg.Market = config.MarketConfig{
			Provider: c.Market.Provider,
			Timeout:  int(c.Market.Timeout),
		}
	}
	if c.Search != nil {
		cfg.Search = config.SearchConfig{Provider: c.Search.Provider}
		if c.Search.Tavily != nil {
			cfg.Search.Tavily = config.TavilyConfig{APIKey: c.Search.Tavily.ApiKey}
		}
		if c.Search.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: c.Search.Searxng.BaseUrl,
				Timeout: int(c.Search.Searxng.Timeout),
			}
		}
	}
	if c.Compliance != nil {
		cfg.Compliance = config.ComplianceConfig{
			Disclaimer:     c.Compliance.Disclaimer,
			ForbiddenTerms: c.Compliance.ForbiddenTerms,
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{
			Level: c.Log.Level,
			File:  c.Log.File,
		}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		}
	}
	if c.Db != nil {
		cfg.DB = config.DBConfig{
			Host:     c.Db.Host,
			Port:     int(c.Db.Port),
			User:     c.Db.User,
			Password: c.Db.Password,
			Name:     c.Db.Name,
		}
	}
	return cfg
}

// NewMarketProvider 初始化行情数据源，供股票查询接口使用
func NewMarketProvider(c *conf.Radar) (market.Provider, error) {
	cfg := &config.Config{}
	if c != nil {
		cfg = toRadarConfig(c)
	}
	return marketFactory.NewProvider(cfg)
}

// NewRadarEngine 初始化 stock_radar 引擎
func NewRadarEngine(c *conf.Radar, logger log.Logger) (*engine.Engine, func(), error) {
	if c == nil {
		return nil, func() {}, nil
	}

	srCfg := toRadarConfig(c)

	// 初始化日志
	if err := srLogger.InitLogger(srCfg.Log.Level, srCfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init stock_radar logger: %v", err)
		_ = srLogger.InitLogger("info", "") // 降级处理
	}

	// 初始化存储层
	store, err := storage.NewStorage(srCfg.DB)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init storage for engine: %v", err)
		return nil, nil, err
	}

	// 初始化核心引擎
	eng, err := engine.NewEngine(srCfg, store)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up stock_radar engine")
	}

	return eng, cleanup, nil
}
