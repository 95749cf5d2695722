package quant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/model"
)

func maRow(date string, ma10, ma50 float64) model.FeatureRow {
	return model.FeatureRow{
		Candle: model.Candle{Date: date, Close: 10},
		MA10:   model.JSONFloat(ma10),
		MA50:   model.JSONFloat(ma50),
		RSI:    model.JSONFloat(math.NaN()),
	}
}

func rsiRow(date string, rsi float64) model.FeatureRow {
	return model.FeatureRow{
		Candle: model.Candle{Date: date, Close: 10},
		MA10:   model.JSONFloat(math.NaN()),
		MA50:   model.JSONFloat(math.NaN()),
		RSI:    model.JSONFloat(rsi),
	}
}

func TestDetectSignalsGoldenCross(t *testing.T) {
	rows := []model.FeatureRow{
		maRow("2024-01-02", 9.9, 10.0),
		maRow("2024-01-03", 10.2, 10.1),
	}
	signals := DetectSignals(rows)
	require.Len(t, signals, 1)
	assert.Equal(t, "golden_cross", signals[0].Name)
	assert.Equal(t, "bullish", signals[0].Direction)
	assert.Equal(t, "2024-01-03", signals[0].TriggeredAt)
	assert.Equal(t, 10.2, signals[0].Evidence["ma_10"])
	assert.Equal(t, 10.1, signals[0].Evidence["ma_50"])
}

func TestDetectSignalsDeathCross(t *testing.T) {
	rows := []model.FeatureRow{
		maRow("2024-01-02", 10.1, 10.0),
		maRow("2024-01-03", 9.8, 10.0),
	}
	signals := DetectSignals(rows)
	require.Len(t, signals, 1)
	assert.Equal(t, "death_cross", signals[0].Name)
	assert.Equal(t, "bearish", signals[0].Direction)
}

func TestDetectSignalsNoCrossWhenMissing(t *testing.T) {
	rows := []model.FeatureRow{
		maRow("2024-01-02", math.NaN(), 10.0),
		maRow("2024-01-03", 10.2, 10.1),
	}
	assert.Empty(t, DetectSignals(rows))
}

func TestDetectSignalsRSIBands(t *testing.T) {
	rows := []model.FeatureRow{
		rsiRow("2024-01-02", 65),
		rsiRow("2024-01-03", 72), // 进入超买
		rsiRow("2024-01-04", 75), // 仍在区间内，不重复触发
		rsiRow("2024-01-05", 50),
		rsiRow("2024-01-08", 28), // 进入超卖
	}
	signals := DetectSignals(rows)
	require.Len(t, signals, 2)

	assert.Equal(t, "rsi_overbought", signals[0].Name)
	assert.Equal(t, "2024-01-03", signals[0].TriggeredAt)
	assert.Equal(t, 72.0, signals[0].Evidence["rsi"])
	assert.Equal(t, 70.0, signals[0].Evidence["threshold"])

	assert.Equal(t, "rsi_oversold", signals[1].Name)
	assert.Equal(t, "2024-01-08", signals[1].TriggeredAt)
	assert.Equal(t, 30.0, signals[1].Evidence["threshold"])
}

func TestDetectSignalsVolatilitySpike(t *testing.T) {
	rows := make([]model.FeatureRow, 0, 11)
	for i := 0; i < 10; i++ {
		rows = append(rows, model.FeatureRow{
			Candle:       model.Candle{Date: "2024-01-02"},
			MA10:         model.JSONFloat(math.NaN()),
			MA50:         model.JSONFloat(math.NaN()),
			RSI:          model.JSONFloat(math.NaN()),
			Volatility20: model.JSONFloat(0.01),
		})
	}
	rows = append(rows, model.FeatureRow{
		Candle:       model.Candle{Date: "2024-01-16"},
		MA10:         model.JSONFloat(math.NaN()),
		MA50:         model.JSONFloat(math.NaN()),
		RSI:          model.JSONFloat(math.NaN()),
		Volatility20: model.JSONFloat(0.03),
	})

	signals := DetectSignals(rows)
	require.Len(t, signals, 1)
	assert.Equal(t, "volatility_spike", signals[0].Name)
	assert.Equal(t, "neutral", signals[0].Direction)
	assert.Equal(t, 0.03, signals[0].Evidence["volatility_20d"])
	assert.InDelta(t, 0.01, signals[0].Evidence["volatility_60d_mean"], 1e-9)
}
