package factory

import (
	"fmt"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/config"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market/eastmoney"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market/sina"
)

// NewProvider 根据配置创建行情数据源实例，默认使用东方财富
func NewProvider(cfg *config.Config) (market.Provider, error) {
	provider := cfg.Market.Provider
	if provider == "" {
		provider = "eastmoney"
	}

	switch provider {
	case "eastmoney":
		return eastmoney.NewClient(cfg.Market.Timeout), nil
	case "sina":
		return sina.NewClient(cfg.Market.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown market provider: %s", provider)
	}
}
