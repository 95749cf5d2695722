package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/engine"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/logger"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/report"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/storage"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "对自选股执行一次完整的雷达分析",
	Long: `对配置文件里的自选股（或 --codes 指定的股票）执行一次完整分析，
生成 HTML 日报；配置了数据库时同时入库。

Example:
  stockradar run
  stockradar run --codes 600519,000001 --interval 6m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		confPath, _ := cmd.Flags().GetString("conf")
		codes, _ := cmd.Flags().GetStringSlice("codes")
		interval, _ := cmd.Flags().GetString("interval")
		noDB, _ := cmd.Flags().GetBool("no-db")
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfigAndLogger(confPath)
		if err != nil {
			return err
		}

		if len(codes) == 0 {
			codes = cfg.Watchlist
		}
		if len(codes) == 0 {
			return fmt.Errorf("配置错误: 未设置自选股 (watchlist)")
		}
		if interval == "" {
			interval = cfg.Interval
		}

		logger.Log.Info("启动股票雷达...")

		// 初始化数据库连接，失败时降级为仅输出 HTML
		var store *storage.Storage
		if !noDB && cfg.DB.Host != "" {
			s, err := storage.NewStorage(cfg.DB)
			if err != nil {
				logger.Log.Errorf("无法连接数据库: %v. 将仅生成 HTML 文件。", err)
			} else {
				store = s
				defer store.Close()
				logger.Log.Info("已成功连接到数据库")
			}
		} else {
			logger.Log.Info("未配置数据库信息，跳过数据库连接")
		}

		eng, err := engine.NewEngine(cfg, store)
		if err != nil {
			return err
		}

		result, err := eng.Run(context.Background(), engine.RunOptions{
			Codes:    codes,
			Interval: interval,
			Persona:  cfg.UserPersona,
		})
		if err != nil {
			return err
		}

		data := report.HTMLData{
			Date:         time.Now().Format("2006-01-02"),
			Count:        len(result.Reports),
			Reports:      result.Reports,
			DeepAnalysis: result.DeepAnalysis,
		}
		if err := report.WriteFile(output, data); err != nil {
			return fmt.Errorf("生成 HTML 失败: %w", err)
		}

		logger.Log.Infof("✅ 股票雷达日报生成完毕: %s", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("conf", "c", defaultConfPath(), "配置文件路径")
	runCmd.Flags().StringSlice("codes", nil, "股票代码列表，覆盖配置中的 watchlist")
	runCmd.Flags().String("interval", "", "回看区间，例如 30d / 6m / 1y")
	runCmd.Flags().Bool("no-db", false, "跳过数据库写入")
	runCmd.Flags().StringP("output", "o", "output/index.html", "HTML 输出路径")
}

func defaultConfPath() string {
	if p := os.Getenv("STOCKRADAR_CONF"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
