package quant

import (
	"fmt"
	"math"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

const (
	rsiOverbought  = 70.0
	rsiOversold    = 30.0
	volSpikeFactor = 2.0
	volSpikeLookup = 60
)

// DetectSignals 基于指标序列提取规则信号。
// 每个信号都携带触发当日的指标取值，供 LLM 做归因解释。
func DetectSignals(rows []model.FeatureRow) []model.Signal {
	var signals []model.Signal

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]

		// 均线金叉/死叉：短均线穿越长均线的当日
		if prev.MA10.Valid() && prev.MA50.Valid() && cur.MA10.Valid() && cur.MA50.Valid() {
			pd := float64(prev.MA10) - float64(prev.MA50)
			cd := float64(cur.MA10) - float64(cur.MA50)
			if pd <= 0 && cd > 0 {
				signals = append(signals, crossSignal("golden_cross", "bullish", cur))
			} else if pd >= 0 && cd < 0 {
				signals = append(signals, crossSignal("death_cross", "bearish", cur))
			}
		}

		// RSI 进入超买/超卖区间的当日
		if prev.RSI.Valid() && cur.RSI.Valid() {
			p, c := float64(prev.RSI), float64(cur.RSI)
			if p < rsiOverbought && c >= rsiOverbought {
				signals = append(signals, rsiSignal("rsi_overbought", "bearish", cur))
			} else if p > rsiOversold && c <= rsiOversold {
				signals = append(signals, rsiSignal("rsi_oversold", "bullish", cur))
			}
		}

		// 波动率突增：20 日波动率达到近 60 日均值的两倍
		if cur.Volatility20.Valid() {
			base := trailingVolMean(rows, i)
			if !math.IsNaN(base) && base > 0 && float64(cur.Volatility20) >= volSpikeFactor*base {
				signals = append(signals, model.Signal{
					Name:        "volatility_spike",
					Direction:   "neutral",
					TriggeredAt: cur.Date,
					Evidence: map[string]float64{
						"volatility_20d":      float64(cur.Volatility20),
						"volatility_60d_mean": base,
					},
					Note: fmt.Sprintf("20日波动率 %.4f 达到近60日均值 %.4f 的 %.1f 倍以上",
						float64(cur.Volatility20), base, volSpikeFactor),
				})
			}
		}
	}
	return signals
}

func crossSignal(name, direction string, row model.FeatureRow) model.Signal {
	note := "MA10 上穿 MA50"
	if direction == "bearish" {
		note = "MA10 下穿 MA50"
	}
	return model.Signal{
		Name:        name,
		Direction:   direction,
		TriggeredAt: row.Date,
		Evidence: map[string]float64{
			"ma_10": float64(row.MA10),
			"ma_50": float64(row.MA50),
			"close": row.Close,
		},
		Note: note,
	}
}

func rsiSignal(name, direction string, row model.FeatureRow) model.Signal {
	threshold := rsiOverbought
	note := "RSI 进入超买区间"
	if direction == "bullish" {
		threshold = rsiOversold
		note = "RSI 进入超卖区间"
	}
	return model.Signal{
		Name:        name,
		Direction:   direction,
		TriggeredAt: row.Date,
		Evidence: map[string]float64{
			"rsi":       float64(row.RSI),
			"threshold": threshold,
			"close":     row.Close,
		},
		Note: note,
	}
}

// trailingVolMean 计算第 i 日之前（不含当日）近 60 日的波动率均值
func trailingVolMean(rows []model.FeatureRow, i int) float64 {
	lo := i - volSpikeLookup
	if lo < 0 {
		lo = 0
	}
	sum, cnt := 0.0, 0
	for j := lo; j < i; j++ {
		if !rows[j].Volatility20.Valid() {
			continue
		}
		sum += float64(rows[j].Volatility20)
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}
	return sum / float64(cnt)
}
