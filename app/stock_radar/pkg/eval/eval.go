// Package eval 对生成的报告做可信度评估：引用是否合法、证据覆盖是否充分、
// 信号解读是否带引用、合规是否通过，最终给出 A/B/C/D 评级。
package eval

import (
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

// 评级阈值
const (
	gradeAThreshold = 0.85
	gradeBThreshold = 0.6
)

// Evaluate 对单只股票的报告评分。articleCount 为证据池大小。
func Evaluate(report *model.StockReport, articleCount int) model.EvalResult {
	result := model.EvalResult{
		CompliancePassed: report.Compliance == nil || report.Compliance.Passed,
	}

	// 收集全部引用（综述 + 各信号解读）
	var all []int
	all = append(all, report.Citations...)
	uncited := 0
	for _, sr := range report.SignalReads {
		if len(sr.Citations) == 0 {
			uncited++
		}
		all = append(all, sr.Citations...)
	}

	if len(report.SignalReads) > 0 {
		result.UncitedSignalRatio = float64(uncited) / float64(len(report.SignalReads))
	}

	// 引用合法性：下标从 1 开始，越界视为无效但不报错
	valid := 0
	cited := make(map[int]bool)
	for _, idx := range all {
		if idx >= 1 && idx <= articleCount {
			valid++
			cited[idx] = true
		}
	}
	switch {
	case len(all) > 0:
		result.CitationValid = float64(valid) / float64(len(all))
	case articleCount == 0:
		// 没有证据池也没有引用，合法性按空真处理
		result.CitationValid = 1
	}

	// 证据覆盖率：被引用的不同证据占证据池比例
	if articleCount > 0 {
		result.CitationCoverage = float64(len(cited)) / float64(articleCount)
	}

	result.Grade = grade(result)
	return result
}

func grade(r model.EvalResult) string {
	if !r.CompliancePassed || r.CitationValid < 1 {
		return "D"
	}
	score := (r.CitationCoverage + (1 - r.UncitedSignalRatio)) / 2
	switch {
	case score >= gradeAThreshold:
		return "A"
	case score >= gradeBThreshold:
		return "B"
	default:
		return "C"
	}
}
