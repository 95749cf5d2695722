package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/engine"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market/factory"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch CODE",
	Short: "拉取单只股票的日线与指标，输出 JSON",
	Long: `拉取指定股票的前复权日线并计算技术指标，以 JSON 信封输出到标准输出。
不调用 LLM，不访问数据库。

Example:
  stockradar fetch 600519
  stockradar fetch 000001.SZ --interval 30d`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confPath, _ := cmd.Flags().GetString("conf")
		interval, _ := cmd.Flags().GetString("interval")

		cfg, err := loadConfigAndLogger(confPath)
		if err != nil {
			return err
		}

		provider, err := factory.NewProvider(cfg)
		if err != nil {
			return err
		}

		resp := engine.FetchFeatures(context.Background(), provider, args[0], interval)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("%s", resp.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("conf", "c", defaultConfPath(), "配置文件路径")
	fetchCmd.Flags().String("interval", "365d", "回看区间，例如 30d / 6m / 1y")
}
