package domain

// ReportSummary 运行级摘要，用于列表页
type ReportSummary struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	StockCount   int    `json:"stock_count"`
	AverageScore int    `json:"average_score"`
}

// SignalView 信号展示结构
type SignalView struct {
	Name        string `json:"name"`
	Direction   string `json:"direction"`
	TriggeredAt string `json:"triggered_at"`
	Note        string `json:"note"`
	Evidence    string `json:"evidence"` // JSON 字符串
}

// SignalReadView 带引用的信号解读展示结构
type SignalReadView struct {
	Signal      string `json:"signal"`
	Explanation string `json:"explanation"`
	Citations   []int  `json:"citations"`
}

// ArticleView 新闻展示结构
type ArticleView struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	PubDate string `json:"pub_date"`
}

// StockView 单只股票报告展示结构
type StockView struct {
	ID               int           `json:"id"`
	Code             string        `json:"code"`
	Name             string        `json:"name"`
	Overview         string        `json:"overview"`
	TechnicalRead    string        `json:"technical_read"`
	Risks            string        `json:"risks"`
	Score            int              `json:"score"`
	Grade            string           `json:"grade"`
	CompliancePassed bool             `json:"compliance_passed"`
	Citations        []int            `json:"citations"`
	Signals          []SignalView     `json:"signals"`
	SignalReads      []SignalReadView `json:"signal_reads"`
	Articles         []ArticleView    `json:"articles"`
}

// DeepAnalysis 组合深度解读展示结构
type DeepAnalysis struct {
	MacroTrends   string   `json:"macro_trends"`
	Opportunities string   `json:"opportunities"`
	Risks         string   `json:"risks"`
	ActionGuides  []string `json:"action_guides"`
}

// GroupedReport 单次运行的完整报告
type GroupedReport struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	DeepAnalysis *DeepAnalysis `json:"deep_analysis,omitempty"`
	Stocks       []*StockView  `json:"stocks"`
}
