package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/config"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockradar",
	Short: "A 股股票雷达：量化信号 + 新闻检索 + LLM 分析",
	Long: `stockradar 对自选股列表执行每日分析流水线：
拉取前复权日线、计算技术指标与规则信号、检索个股新闻、
由 LLM 生成带引用与归因的分析报告，经合规检查与可信度评估后
写入数据库并输出 HTML 日报。`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfigAndLogger 供各子命令复用的初始化
func loadConfigAndLogger(confPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(confPath)
	if err != nil {
		return nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("无法初始化日志: %w", err)
	}
	return cfg, nil
}
