package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

// DefaultIntervalDays 未指定区间时回看的天数
const DefaultIntervalDays = 365

// Provider 定义通用的行情数据源接口
type Provider interface {
	// Daily 拉取前复权日线，按日期升序返回
	Daily(ctx context.Context, req *Request) (*Series, error)
}

// Request 通用行情请求
type Request struct {
	Symbol    string // 六位裸代码，例如 600519
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// Series 一只股票的日线序列，Name 数据源未提供时为空
type Series struct {
	Symbol  string
	Name    string
	Candles []model.Candle
}

// NormalizeSymbol 规范化股票代码：
// "600519" / "600519.SH" / "600519.sz" -> "600519"
func NormalizeSymbol(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if idx := strings.Index(code, "."); idx >= 0 {
		code = code[:idx]
	}
	return strings.TrimSpace(code)
}

// ParseIntervalDays 解析区间表达式为天数：
//   - 纯数字按天处理："30" -> 30
//   - 带单位："365d" / "6m" / "1y"，大小写不敏感
//
// 解析失败或出现负数一律回退到默认值，最小为 1 天。
func ParseIntervalDays(interval string) int {
	s := strings.ToLower(strings.TrimSpace(interval))
	if s == "" {
		return DefaultIntervalDays
	}

	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return max(1, n)
	}

	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return DefaultIntervalDays
	}

	switch unit {
	case 'd':
		return max(1, n)
	case 'm':
		return max(1, n*30)
	case 'y':
		return max(1, n*365)
	}
	return DefaultIntervalDays
}

// CalcDateRange 根据区间表达式计算查询日期范围，
// 返回 (start, end, 归一化的区间字符串)。
func CalcDateRange(interval string) (string, string, string) {
	days := ParseIntervalDays(interval)
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return start.Format(time.DateOnly), end.Format(time.DateOnly), fmt.Sprintf("%dd", days)
}
