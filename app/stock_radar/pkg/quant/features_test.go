package quant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

func candlesFromCloses(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Date: "2024-01-02", Close: c}
	}
	return out
}

func TestComputeFeaturesEmpty(t *testing.T) {
	assert.Nil(t, ComputeFeatures(nil))
}

func TestComputeFeaturesShortSeries(t *testing.T) {
	rows := ComputeFeatures(candlesFromCloses(10, 11, 12))
	require.Len(t, rows, 3)

	// 窗口不足时均线用已有数据
	assert.Equal(t, model.JSONFloat(10), rows[0].MA10)
	assert.Equal(t, model.JSONFloat(10.5), rows[1].MA10)
	assert.Equal(t, model.JSONFloat(11), rows[2].MA10)
	assert.Equal(t, model.JSONFloat(11), rows[2].MA50)

	// 首日收益率缺失
	assert.False(t, rows[0].DailyReturn.Valid())
	assert.Equal(t, model.JSONFloat(0.1), rows[1].DailyReturn)
	assert.Equal(t, model.JSONFloat(0.0909), rows[2].DailyReturn)

	// 有效收益不足两个时波动率缺失
	assert.False(t, rows[0].Volatility20.Valid())
	assert.False(t, rows[1].Volatility20.Valid())
	assert.Equal(t, model.JSONFloat(0.0064), rows[2].Volatility20)

	// 全程上涨，平均跌幅为零，RSI 无定义
	assert.False(t, rows[2].RSI.Valid())
}

func TestComputeFeaturesRoundsCandle(t *testing.T) {
	rows := ComputeFeatures([]model.Candle{{
		Date:   "2024-01-02",
		Open:   10.123456,
		High:   10.99995,
		Low:    9.87654321,
		Close:  10.00004,
		Volume: 12345.678949,
	}})
	require.Len(t, rows, 1)

	// 行情各浮点列与指标一样保留 4 位小数
	assert.Equal(t, 10.1235, rows[0].Open)
	assert.Equal(t, 11.0, rows[0].High)
	assert.Equal(t, 9.8765, rows[0].Low)
	assert.Equal(t, 10.0, rows[0].Close)
	assert.Equal(t, 12345.6789, rows[0].Volume)
}

func TestComputeFeaturesRSI(t *testing.T) {
	rows := ComputeFeatures(candlesFromCloses(10, 11, 10.5))
	require.Len(t, rows, 3)

	// avgGain=0.5, avgLoss=0.25 -> RS=2 -> RSI=66.6667
	assert.Equal(t, model.JSONFloat(66.6667), rows[2].RSI)
}

func TestComputeFeaturesZeroClose(t *testing.T) {
	rows := ComputeFeatures(candlesFromCloses(0, 10))
	require.Len(t, rows, 2)
	assert.False(t, rows[1].DailyReturn.Valid())
}

func TestRollingMeanSkipsNaN(t *testing.T) {
	got := rollingMean([]float64{math.NaN(), 2, 4}, 2, 10)
	assert.Equal(t, 3.0, got)

	assert.True(t, math.IsNaN(rollingMean([]float64{math.NaN()}, 0, 10)))
}

func TestRollingStdSample(t *testing.T) {
	// 样本标准差（ddof=1）：{1,2,3} -> 1
	got := rollingStd([]float64{1, 2, 3}, 2, 3)
	assert.InDelta(t, 1.0, got, 1e-9)

	assert.True(t, math.IsNaN(rollingStd([]float64{1}, 0, 3)))
}
