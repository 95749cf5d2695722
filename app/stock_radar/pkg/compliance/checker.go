// Package compliance 实现合规约束生成的两道关口：
// 生成前通过 PromptClause 给 LLM 注入约束，生成后通过 Check 扫描违规表述。
package compliance

import (
	"strings"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

// DefaultDisclaimer 内置免责声明
const DefaultDisclaimer = "以上内容仅为基于公开数据的技术分析，不构成任何投资建议。市场有风险，投资需谨慎。"

// rule 单条违规规则
type rule struct {
	term     string
	severity string
}

// builtinRules 证券营销话术中的典型违规表述。
// error 级命中即判不合格，warning 级只记录。
var builtinRules = []rule{
	{"保证收益", "error"},
	{"稳赚不赔", "error"},
	{"必涨", "error"},
	{"必跌", "error"},
	{"包赚", "error"},
	{"无风险套利", "error"},
	{"保本保息", "error"},
	{"guaranteed return", "error"},
	{"一定上涨", "error"},
	{"建议满仓", "warning"},
	{"梭哈", "warning"},
	{"抄底", "warning"},
}

// Checker 合规检查器
type Checker struct {
	rules      []rule
	disclaimer string
}

// NewChecker 创建检查器，extraTerms 作为 warning 级规则追加
func NewChecker(disclaimer string, extraTerms []string) *Checker {
	if disclaimer == "" {
		disclaimer = DefaultDisclaimer
	}
	rules := make([]rule, len(builtinRules), len(builtinRules)+len(extraTerms))
	copy(rules, builtinRules)
	for _, t := range extraTerms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		rules = append(rules, rule{term: t, severity: "warning"})
	}
	return &Checker{rules: rules, disclaimer: disclaimer}
}

// Check 扫描文本并返回合规结论
func (c *Checker) Check(text string) model.ComplianceResult {
	lower := strings.ToLower(text)
	result := model.ComplianceResult{Passed: true}

	for _, r := range c.rules {
		idx := strings.Index(lower, strings.ToLower(r.term))
		if idx < 0 {
			continue
		}
		result.Violations = append(result.Violations, model.Violation{
			Rule:     r.term,
			Excerpt:  excerpt(text, idx, len(r.term)),
			Severity: r.severity,
		})
		if r.severity == "error" {
			result.Passed = false
		}
	}
	return result
}

// EnsureDisclaimer 确保文本以免责声明收尾，返回处理后的文本和是否有追加
func (c *Checker) EnsureDisclaimer(text string) (string, bool) {
	if strings.Contains(text, c.disclaimer) {
		return text, false
	}
	return strings.TrimRight(text, "\n") + "\n\n" + c.disclaimer, true
}

// PromptClause 返回注入到生成 Prompt 的合规约束文本
func (c *Checker) PromptClause() string {
	var sb strings.Builder
	sb.WriteString("合规要求（必须遵守）：\n")
	sb.WriteString("1. 不得给出具体的买入/卖出指令，不得预测确定性涨跌。\n")
	sb.WriteString("2. 不得出现以下表述：")
	n := 0
	for _, r := range c.rules {
		if r.severity != "error" {
			continue
		}
		if n > 0 {
			sb.WriteString("、")
		}
		sb.WriteString("“" + r.term + "”")
		n++
	}
	sb.WriteString("。\n")
	sb.WriteString("3. 所有结论必须可追溯到给定的指标数据或新闻证据。\n")
	return sb.String()
}

// excerpt 截取命中位置前后各 20 字节并对齐到合法 UTF-8 边界
func excerpt(text string, idx, matchLen int) string {
	lo := idx - 20
	if lo < 0 {
		lo = 0
	}
	hi := idx + matchLen + 20
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8Start(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8Start(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
