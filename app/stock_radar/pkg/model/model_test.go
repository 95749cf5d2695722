package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFloatMarshal(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1.2345, "1.2345"},
		{0, "0"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}
	for _, c := range cases {
		got, err := json.Marshal(JSONFloat(c.in))
		require.NoError(t, err)
		assert.Equal(t, c.want, string(got))
	}
}

func TestJSONFloatUnmarshal(t *testing.T) {
	var f JSONFloat
	require.NoError(t, json.Unmarshal([]byte("null"), &f))
	assert.False(t, f.Valid())

	require.NoError(t, json.Unmarshal([]byte("3.14"), &f))
	assert.Equal(t, JSONFloat(3.14), f)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &f))
}

func TestFeatureRowStrictJSON(t *testing.T) {
	row := FeatureRow{
		Candle:       Candle{Date: "2024-01-02", Close: 10.5},
		MA10:         JSONFloat(10.2),
		MA50:         JSONFloat(math.NaN()),
		DailyReturn:  JSONFloat(math.NaN()),
		Volatility20: JSONFloat(math.NaN()),
		RSI:          JSONFloat(55.3),
	}
	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 10.2, decoded["ma_10"])
	assert.Nil(t, decoded["ma_50"])
	assert.Nil(t, decoded["daily_return"])
	assert.Equal(t, 55.3, decoded["rsi"])
}
