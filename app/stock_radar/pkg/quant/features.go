// Package quant 把标准化日线加工成技术指标与规则信号。
// 滚动窗口语义对齐 pandas 的 rolling(min_periods=1)：窗口不足时用已有数据，
// 样本标准差需要至少两个有效观测，否则计为缺失。
package quant

import (
	"math"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

const (
	maShortWindow  = 10
	maLongWindow   = 50
	volWindow      = 20
	rsiWindow      = 14
	roundPrecision = 4
)

// ComputeFeatures 计算技术指标：MA_10、MA_50、日收益率、20 日波动率、RSI(14)
func ComputeFeatures(candles []model.Candle) []model.FeatureRow {
	n := len(candles)
	if n == 0 {
		return nil
	}

	closes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
	}

	// 日收益率，首日缺失
	returns := make([]float64, n)
	returns[0] = math.NaN()
	for i := 1; i < n; i++ {
		if closes[i-1] == 0 {
			returns[i] = math.NaN()
			continue
		}
		returns[i] = closes[i]/closes[i-1] - 1
	}

	// RSI 的涨跌幅拆分
	gains := make([]float64, n)
	losses := make([]float64, n)
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	rows := make([]model.FeatureRow, n)
	for i := range candles {
		rows[i].Candle = roundCandle(candles[i])
		rows[i].MA10 = round4(rollingMean(closes, i, maShortWindow))
		rows[i].MA50 = round4(rollingMean(closes, i, maLongWindow))
		rows[i].DailyReturn = round4(returns[i])
		rows[i].Volatility20 = round4(rollingStd(returns, i, volWindow))
		rows[i].RSI = round4(rsi(gains, losses, i))
	}
	return rows
}

// rollingMean 计算 values[...i] 窗口内有效值的均值，无有效值返回 NaN
func rollingMean(values []float64, i, window int) float64 {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	sum, cnt := 0.0, 0
	for j := lo; j <= i; j++ {
		if math.IsNaN(values[j]) {
			continue
		}
		sum += values[j]
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}
	return sum / float64(cnt)
}

// rollingStd 样本标准差，有效观测不足两个时返回 NaN
func rollingStd(values []float64, i, window int) float64 {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	sum, cnt := 0.0, 0
	for j := lo; j <= i; j++ {
		if math.IsNaN(values[j]) {
			continue
		}
		sum += values[j]
		cnt++
	}
	if cnt < 2 {
		return math.NaN()
	}
	mean := sum / float64(cnt)

	var ss float64
	for j := lo; j <= i; j++ {
		if math.IsNaN(values[j]) {
			continue
		}
		d := values[j] - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(cnt-1))
}

// rsi 简单滚动均值版 RSI，平均跌幅为零时无定义
func rsi(gains, losses []float64, i int) float64 {
	avgGain := rollingMean(gains, i, rsiWindow)
	avgLoss := rollingMean(losses, i, rsiWindow)
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) || avgLoss == 0 {
		return math.NaN()
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// roundCandle OHLCV 各浮点列同样保留 4 位小数
func roundCandle(c model.Candle) model.Candle {
	c.Open = roundFloat(c.Open)
	c.High = roundFloat(c.High)
	c.Low = roundFloat(c.Low)
	c.Close = roundFloat(c.Close)
	c.Volume = roundFloat(c.Volume)
	return c
}

func roundFloat(v float64) float64 {
	p := math.Pow10(roundPrecision)
	return math.Round(v*p) / p
}

// round4 四舍五入到 4 位小数，NaN 原样透传
func round4(v float64) model.JSONFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.JSONFloat(math.NaN())
	}
	p := math.Pow10(roundPrecision)
	return model.JSONFloat(math.Round(v*p) / p)
}
