package engine

import (
	"fmt"
	"sort"
	"strings"

	dm "github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

// buildStockPrompt 组装单只股票的分析 Prompt：
// 指标快照 + 信号及其触发证据 + 编号新闻证据池 + 合规条款 + 输出格式。
func buildStockPrompt(symbol, name string, rows []dm.FeatureRow, signals []dm.Signal, articles []dm.NewsArticle, complianceClause string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "以下是股票【%s %s】的量化数据与近期新闻，请撰写分析报告：\n\n", name, symbol)

	// 最新指标快照（取最近 5 个交易日）
	sb.WriteString("## 近期指标\n")
	lo := len(rows) - 5
	if lo < 0 {
		lo = 0
	}
	for _, r := range rows[lo:] {
		fmt.Fprintf(&sb, "%s: 收盘 %.2f", r.Date, r.Close)
		if r.MA10.Valid() {
			fmt.Fprintf(&sb, ", MA10 %.2f", float64(r.MA10))
		}
		if r.MA50.Valid() {
			fmt.Fprintf(&sb, ", MA50 %.2f", float64(r.MA50))
		}
		if r.RSI.Valid() {
			fmt.Fprintf(&sb, ", RSI %.1f", float64(r.RSI))
		}
		if r.Volatility20.Valid() {
			fmt.Fprintf(&sb, ", 20日波动率 %.4f", float64(r.Volatility20))
		}
		sb.WriteString("\n")
	}

	// 规则信号与触发证据
	sb.WriteString("\n## 规则信号\n")
	if len(signals) == 0 {
		sb.WriteString("（无信号触发）\n")
	}
	for _, s := range signals {
		fmt.Fprintf(&sb, "- %s (%s, %s): %s，触发数据 %s\n",
			s.Name, s.Direction, s.TriggeredAt, s.Note, formatEvidence(s.Evidence))
	}

	// 编号证据池
	sb.WriteString("\n## 新闻证据池（引用时使用编号）\n")
	if len(articles) == 0 {
		sb.WriteString("（无可用新闻）\n")
	}
	for i, art := range articles {
		fmt.Fprintf(&sb, "[%d] %s (%s)\n%s\n\n", i+1, art.Title, art.PubDate, art.Content)
	}

	sb.WriteString("\n")
	sb.WriteString(complianceClause)

	sb.WriteString(`
你是一个资深证券分析师。请根据以上数据撰写该股票的分析报告。
每条信号解读必须引用触发该信号的具体指标取值；涉及消息面的结论必须
在 citations 中给出新闻证据池的编号，不得引用不存在的编号。
请务必严格按照以下 JSON 格式返回，不要包含任何 markdown 标记：
{
	"overview": "综述（Markdown格式，200字左右），结合量价与消息面总结当前状态。",
	"technical_read": "技术面解读（Markdown格式，100-200字），逐一说明指标含义。",
	"signal_reads": [
		{"signal": "信号名", "explanation": "解读，必须引用触发数据", "citations": [1]}
	],
	"risks": "风险提示（Markdown格式，100字左右）。",
	"score": 8,
	"citations": [1, 2]
}
评分说明：score 为 1-10 的整数，代表该股票今日的关注价值，不代表涨跌预期。`)

	return sb.String()
}

// formatEvidence 将信号证据渲染为 key=value 列表，键排序保证输出稳定
func formatEvidence(evidence map[string]float64) string {
	if len(evidence) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(evidence))
	for k := range evidence {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.4f", k, evidence[k]))
	}
	return strings.Join(parts, ", ")
}
