package compliance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckClean(t *testing.T) {
	c := NewChecker("", nil)
	result := c.Check("该股短期处于超买区间，建议关注回调风险。")
	assert.True(t, result.Passed)
	assert.Empty(t, result.Violations)
}

func TestCheckErrorViolation(t *testing.T) {
	c := NewChecker("", nil)
	result := c.Check("本方案保证收益，稳赚不赔，欢迎参与。")
	assert.False(t, result.Passed)
	require.Len(t, result.Violations, 2)
	assert.Equal(t, "保证收益", result.Violations[0].Rule)
	assert.Equal(t, "error", result.Violations[0].Severity)
	assert.Contains(t, result.Violations[0].Excerpt, "保证收益")
}

func TestCheckWarningOnly(t *testing.T) {
	c := NewChecker("", nil)
	result := c.Check("部分投资者选择在此位置抄底。")
	assert.True(t, result.Passed)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "warning", result.Violations[0].Severity)
}

func TestCheckCaseInsensitive(t *testing.T) {
	c := NewChecker("", nil)
	result := c.Check("This product offers a GUARANTEED RETURN of 10%.")
	assert.False(t, result.Passed)
}

func TestCheckExtraTerms(t *testing.T) {
	c := NewChecker("", []string{"内幕消息", "  ", ""})
	result := c.Check("据内幕消息，该公司即将重组。")
	assert.True(t, result.Passed) // 追加词条为 warning 级
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "内幕消息", result.Violations[0].Rule)
}

func TestEnsureDisclaimer(t *testing.T) {
	c := NewChecker("", nil)

	text, added := c.EnsureDisclaimer("短期波动加大。\n")
	assert.True(t, added)
	assert.True(t, strings.HasSuffix(text, DefaultDisclaimer))

	again, added := c.EnsureDisclaimer(text)
	assert.False(t, added)
	assert.Equal(t, text, again)
}

func TestEnsureDisclaimerCustom(t *testing.T) {
	custom := "本内容仅供内部研究使用。"
	c := NewChecker(custom, nil)

	text, added := c.EnsureDisclaimer("收盘价创出新高。")
	assert.True(t, added)
	assert.True(t, strings.HasSuffix(text, custom))
}

func TestPromptClause(t *testing.T) {
	c := NewChecker("", []string{"内幕消息"})
	clause := c.PromptClause()

	assert.Contains(t, clause, "合规要求")
	assert.Contains(t, clause, "“保证收益”")
	assert.Contains(t, clause, "“必涨”")
	// warning 级与追加词条不进入提示词
	assert.NotContains(t, clause, "抄底")
	assert.NotContains(t, clause, "内幕消息")
}
