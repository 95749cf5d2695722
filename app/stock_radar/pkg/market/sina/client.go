package sina

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

const defaultBaseURL = "https://quotes.sina.cn/cn/api/jsonp_v2.php/=/CN_MarketDataService.getKLineData"

// Client 新浪财经日线行情客户端，作为东方财富的备选数据源
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建新浪客户端，timeout 单位秒
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

// kline 新浪返回的单根 K 线
type kline struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

// ExchangeSymbol 推算新浪带市场前缀的代码：600519 -> sh600519
func ExchangeSymbol(symbol string) string {
	if strings.HasPrefix(symbol, "6") || strings.HasPrefix(symbol, "9") {
		return "sh" + symbol
	}
	return "sz" + symbol
}

// Daily implements market.Provider
func (c *Client) Daily(ctx context.Context, req *market.Request) (*market.Series, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 新浪接口不支持起止日期，只支持条数，按日期范围放量拉取后再过滤
	datalen := rangeDays(req.StartDate, req.EndDate) + 1

	q := u.Query()
	q.Set("symbol", ExchangeSymbol(req.Symbol))
	q.Set("scale", "240") // 240 分钟 = 日线
	q.Set("ma", "no")
	q.Set("datalen", strconv.Itoa(datalen))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sina api error (status %d): %s", res.StatusCode, string(body))
	}

	var lines []kline
	if err := json.Unmarshal(stripJSONP(body), &lines); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	series := &market.Series{Symbol: req.Symbol}
	for _, l := range lines {
		// day 可能带 "2024-01-02 00:00:00"
		date := l.Day
		if len(date) > 10 {
			date = date[:10]
		}
		if date < req.StartDate || date > req.EndDate {
			continue
		}
		c, ok := parseKline(date, l)
		if !ok {
			continue
		}
		series.Candles = append(series.Candles, c)
	}
	return series, nil
}

func parseKline(date string, l kline) (model.Candle, bool) {
	vals := make([]float64, 5)
	for i, s := range []string{l.Open, l.Close, l.High, l.Low, l.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, false
		}
		vals[i] = v
	}
	return model.Candle{
		Date:   date,
		Open:   vals[0],
		Close:  vals[1],
		High:   vals[2],
		Low:    vals[3],
		Volume: vals[4],
	}, true
}

// stripJSONP 剥掉 jsonp_v2 接口包裹的 =( ... ) 外壳，裸 JSON 原样返回
func stripJSONP(body []byte) []byte {
	s := strings.TrimSpace(string(body))
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start >= 0 && end > start {
		return []byte(s[start+1 : end])
	}
	return []byte(s)
}

func rangeDays(start, end string) int {
	s, err1 := time.Parse(time.DateOnly, start)
	e, err2 := time.Parse(time.DateOnly, end)
	if err1 != nil || err2 != nil || e.Before(s) {
		return market.DefaultIntervalDays
	}
	return int(e.Sub(s).Hours() / 24)
}
