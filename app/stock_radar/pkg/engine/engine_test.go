package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/compliance"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/logger"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger("error", "")
	os.Exit(m.Run())
}

// stubProvider 返回预置的日线数据
type stubProvider struct {
	series *market.Series
	err    error
}

func (s *stubProvider) Daily(ctx context.Context, req *market.Request) (*market.Series, error) {
	return s.series, s.err
}

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanJSON(c.in))
	}
}

func TestFetchFeaturesEmptyCode(t *testing.T) {
	resp := FetchFeatures(context.Background(), &stubProvider{}, "   ", "30d")

	assert.False(t, resp.Success)
	assert.Equal(t, "Error: stock_code cannot be empty.", resp.Message)
	assert.Empty(t, resp.Data)
	assert.Equal(t, "30d", resp.Meta.Interval)
}

func TestFetchFeaturesNoData(t *testing.T) {
	p := &stubProvider{series: &market.Series{Symbol: "600519"}}
	resp := FetchFeatures(context.Background(), p, "600519.SH", "")

	assert.False(t, resp.Success)
	assert.Equal(t, "No data found for stock 600519.", resp.Message)
	assert.Equal(t, "600519", resp.Meta.Symbol)
	assert.Equal(t, "365d", resp.Meta.Interval)
}

func TestFetchFeaturesProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("network down")}
	resp := FetchFeatures(context.Background(), p, "600519", "90d")

	// 拉取失败按无数据处理，信封本身不报错
	assert.False(t, resp.Success)
	assert.Equal(t, "No data found for stock 600519.", resp.Message)
}

func TestFetchFeaturesSuccess(t *testing.T) {
	p := &stubProvider{series: &market.Series{
		Symbol: "600519",
		Name:   "贵州茅台",
		Candles: []model.Candle{
			{Date: "2024-01-02", Close: 100},
			{Date: "2024-01-03", Close: 102},
		},
	}}
	resp := FetchFeatures(context.Background(), p, "600519", "90d")

	require.True(t, resp.Success)
	assert.Equal(t, "Successfully retrieved stock data for 600519", resp.Message)
	assert.Equal(t, 2, resp.Meta.Rows)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, model.JSONFloat(0.02), resp.Data[1].DailyReturn)

	// 响应必须始终是严格合法的 JSON
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "NaN")
}

func TestApplyComplianceDeepAnalysis(t *testing.T) {
	e := &Engine{checker: compliance.NewChecker("", nil)}

	analysis := &model.DeepAnalysisResult{
		Title:         "今日组合速览",
		MacroTrends:   "消费板块走强。",
		Opportunities: "白酒板块必涨，建议关注。",
		Risks:         "短期波动加大。",
		ActionGuides:  []string{"关注行业政策"},
	}
	cr := e.applyCompliance(analysis)

	// 违规表述被识别，风险段补上免责声明
	assert.False(t, cr.Passed)
	require.Len(t, cr.Violations, 1)
	assert.Equal(t, "必涨", cr.Violations[0].Rule)
	assert.True(t, strings.HasSuffix(analysis.Risks, compliance.DefaultDisclaimer))

	// 再跑一次不重复追加
	again := *analysis
	e.applyCompliance(&again)
	assert.Equal(t, analysis.Risks, again.Risks)
}

func TestBuildStockPrompt(t *testing.T) {
	rows := []model.FeatureRow{
		{Candle: model.Candle{Date: "2024-01-02", Close: 100}, MA10: model.JSONFloat(99.5)},
	}
	signals := []model.Signal{
		{
			Name: "golden_cross", Direction: "bullish", TriggeredAt: "2024-01-02",
			Evidence: map[string]float64{"ma_10": 99.5, "ma_50": 98.2},
			Note:     "MA10 上穿 MA50",
		},
	}
	articles := []model.NewsArticle{
		{Title: "公司发布年度业绩预告", PubDate: "2024-01-01", Content: "净利润同比增长。"},
	}

	prompt := buildStockPrompt("600519", "贵州茅台", rows, signals, articles, "合规要求：禁止预测涨跌。")

	assert.Contains(t, prompt, "贵州茅台")
	assert.Contains(t, prompt, "golden_cross")
	assert.Contains(t, prompt, "ma_10=99.5000")
	assert.Contains(t, prompt, "[1] 公司发布年度业绩预告")
	assert.Contains(t, prompt, "合规要求：禁止预测涨跌。")
}

func TestFormatEvidenceSorted(t *testing.T) {
	got := formatEvidence(map[string]float64{"rsi": 72.1, "close": 10.5, "threshold": 70})
	assert.Equal(t, "close=10.5000, rsi=72.1000, threshold=70.0000", got)
	assert.Equal(t, "{}", formatEvidence(nil))
}
