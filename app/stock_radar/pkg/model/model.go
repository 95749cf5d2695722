package model

import (
	"bytes"
	"math"
	"strconv"
)

// JSONFloat 内部以 NaN 表示缺失值，序列化时输出 null，
// 保证响应永远是严格合法的 JSON（不出现 NaN/Inf）。
type JSONFloat float64

// Valid 判断是否为有效数值
func (f JSONFloat) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarshalJSON 实现 json.Marshaler
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

// UnmarshalJSON 实现 json.Unmarshaler，null 还原为 NaN
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = JSONFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// Candle 标准化后的日线行情
type Candle struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// FeatureRow 带技术指标的日线行情
type FeatureRow struct {
	Candle
	MA10         JSONFloat `json:"ma_10"`
	MA50         JSONFloat `json:"ma_50"`
	DailyReturn  JSONFloat `json:"daily_return"`
	Volatility20 JSONFloat `json:"volatility_20d"`
	RSI          JSONFloat `json:"rsi"`
}

// Signal 规则信号，Evidence 记录触发时的指标取值，供归因解释使用
type Signal struct {
	Name        string             `json:"name"`
	Direction   string             `json:"direction"` // bullish / bearish / neutral
	TriggeredAt string             `json:"triggered_at"`
	Evidence    map[string]float64 `json:"evidence"`
	Note        string             `json:"note"`
}

// NewsArticle 检索到的新闻
type NewsArticle struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	PubDate string `json:"pub_date"`
	Content string `json:"-"` // 临时存储用于 LLM 分析，不对外输出
}

// SignalRead LLM 对单个信号的解读，必须引用触发该信号的指标取值
type SignalRead struct {
	Signal      string `json:"signal"`
	Explanation string `json:"explanation"`
	Citations   []int  `json:"citations"` // 证据池下标，从 1 开始
}

// StockReport 单只股票的分析报告
type StockReport struct {
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Overview      string       `json:"overview"`       // 综述
	TechnicalRead string       `json:"technical_read"` // 技术面解读
	SignalReads   []SignalRead `json:"signal_reads"`
	Risks         string       `json:"risks"`
	Score         int          `json:"score"`     // 1-10 关注度评分
	Citations     []int        `json:"citations"` // 综述引用的证据池下标

	Signals    []Signal          `json:"-"`
	Articles   []NewsArticle     `json:"-"`
	Compliance *ComplianceResult `json:"-"`
	Eval       *EvalResult       `json:"-"`
}

// DeepAnalysisResult 跨股票组合级深度解读
type DeepAnalysisResult struct {
	Title         string   `json:"title"`
	MacroTrends   string   `json:"macro_trends"`
	Opportunities string   `json:"opportunities"`
	Risks         string   `json:"risks"`
	ActionGuides  []string `json:"action_guides"`
}

// Violation 单条合规违规
type Violation struct {
	Rule     string `json:"rule"`
	Excerpt  string `json:"excerpt"`
	Severity string `json:"severity"` // error / warning
}

// ComplianceResult 合规检查结论
type ComplianceResult struct {
	Passed          bool        `json:"passed"`
	Violations      []Violation `json:"violations"`
	DisclaimerAdded bool        `json:"disclaimer_added"`
}

// EvalResult 可信度评估结论
type EvalResult struct {
	CitationValid      float64 `json:"citation_valid"`       // 引用下标合法比例
	CitationCoverage   float64 `json:"citation_coverage"`    // 被引用证据占比
	UncitedSignalRatio float64 `json:"uncited_signal_ratio"` // 无引用的信号解读占比
	CompliancePassed   bool    `json:"compliance_passed"`
	Grade              string  `json:"grade"` // A/B/C/D
}

// Meta 行情响应元信息
type Meta struct {
	StockCode string `json:"stock_code"`
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Interval  string `json:"interval"`
	Rows      int    `json:"rows"`
}

// StockDataResponse 行情接口响应信封
type StockDataResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Meta    Meta         `json:"meta"`
	Data    []FeatureRow `json:"data"`
}
