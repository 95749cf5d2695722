package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

func TestEvaluateAllCitedAndCompliant(t *testing.T) {
	report := &model.StockReport{
		Citations: []int{1, 2},
		SignalReads: []model.SignalRead{
			{Citations: []int{1}},
			{Citations: []int{3}},
		},
		Compliance: &model.ComplianceResult{Passed: true},
	}
	result := Evaluate(report, 3)

	assert.Equal(t, 1.0, result.CitationValid)
	assert.Equal(t, 1.0, result.CitationCoverage)
	assert.Equal(t, 0.0, result.UncitedSignalRatio)
	assert.True(t, result.CompliancePassed)
	assert.Equal(t, "A", result.Grade)
}

func TestEvaluateOutOfRangeCitation(t *testing.T) {
	report := &model.StockReport{
		Citations:  []int{1, 5}, // 5 越界
		Compliance: &model.ComplianceResult{Passed: true},
	}
	result := Evaluate(report, 3)

	assert.Equal(t, 0.5, result.CitationValid)
	assert.Equal(t, "D", result.Grade)
}

func TestEvaluateComplianceFailure(t *testing.T) {
	report := &model.StockReport{
		Citations:  []int{1},
		Compliance: &model.ComplianceResult{Passed: false},
	}
	result := Evaluate(report, 1)

	assert.False(t, result.CompliancePassed)
	assert.Equal(t, "D", result.Grade)
}

func TestEvaluateUncitedSignals(t *testing.T) {
	report := &model.StockReport{
		Citations: []int{1},
		SignalReads: []model.SignalRead{
			{Citations: []int{1}},
			{},
			{},
			{},
		},
		Compliance: &model.ComplianceResult{Passed: true},
	}
	result := Evaluate(report, 4)

	assert.Equal(t, 0.75, result.UncitedSignalRatio)
	assert.Equal(t, 0.25, result.CitationCoverage)
	// score = (0.25 + 0.25) / 2 = 0.25
	assert.Equal(t, "C", result.Grade)
}

func TestEvaluateEmptyPoolNoCitations(t *testing.T) {
	report := &model.StockReport{
		Compliance: &model.ComplianceResult{Passed: true},
	}
	result := Evaluate(report, 0)

	// 没有证据池也没有引用，按空真处理
	assert.Equal(t, 1.0, result.CitationValid)
	assert.Equal(t, 0.0, result.CitationCoverage)
}

func TestEvaluateCitationsWithoutPool(t *testing.T) {
	report := &model.StockReport{
		Citations:  []int{1},
		Compliance: &model.ComplianceResult{Passed: true},
	}
	result := Evaluate(report, 0)

	// 没有证据池却给出引用，引用全部无效
	assert.Equal(t, 0.0, result.CitationValid)
	assert.Equal(t, "D", result.Grade)
}

func TestEvaluateNilCompliance(t *testing.T) {
	result := Evaluate(&model.StockReport{}, 0)
	assert.True(t, result.CompliancePassed)
}
