package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

const defaultBaseURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

// Client 东方财富日线行情客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建东方财富客户端，timeout 单位秒
func NewClient(timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: t},
	}
}

// Ensure Client implements market.Provider
var _ market.Provider = (*Client)(nil)

// klineResponse 东方财富 push2his 响应结构
type klineResponse struct {
	RC   int    `json:"rc"`
	Msg  string `json:"msg"`
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// SecID 推算东方财富市场前缀：沪市(60/68/9 开头)为 1，其余(深/北)为 0
func SecID(symbol string) string {
	if strings.HasPrefix(symbol, "6") || strings.HasPrefix(symbol, "9") {
		return "1." + symbol
	}
	return "0." + symbol
}

// Daily implements market.Provider
func (c *Client) Daily(ctx context.Context, req *market.Request) (*market.Series, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("secid", SecID(req.Symbol))
	// klt=101 日线，fqt=1 前复权
	q.Set("klt", "101")
	q.Set("fqt", "1")
	q.Set("beg", strings.ReplaceAll(req.StartDate, "-", ""))
	q.Set("end", strings.ReplaceAll(req.EndDate, "-", ""))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	// f51 日期 f52 开盘 f53 收盘 f54 最高 f55 最低 f56 成交量
	q.Set("fields2", "f51,f52,f53,f54,f55,f56")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("eastmoney api error (status %d): %s", res.StatusCode, string(body))
	}

	var kr klineResponse
	if err := json.NewDecoder(res.Body).Decode(&kr); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	if kr.RC != 0 {
		return nil, fmt.Errorf("eastmoney api error (rc %d): %s", kr.RC, kr.Msg)
	}
	series := &market.Series{Symbol: req.Symbol}
	if kr.Data == nil {
		return series, nil
	}
	series.Name = kr.Data.Name

	series.Candles = make([]model.Candle, 0, len(kr.Data.Klines))
	for _, line := range kr.Data.Klines {
		c, ok := parseKline(line)
		if !ok {
			continue
		}
		series.Candles = append(series.Candles, c)
	}
	return series, nil
}

// parseKline 解析 "日期,开,收,高,低,量" 形式的行
func parseKline(line string) (model.Candle, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 6 {
		return model.Candle{}, false
	}

	nums := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return model.Candle{}, false
		}
		nums[i] = v
	}

	return model.Candle{
		Date:   parts[0],
		Open:   nums[0],
		Close:  nums[1],
		High:   nums[2],
		Low:    nums[3],
		Volume: nums[4],
	}, true
}
