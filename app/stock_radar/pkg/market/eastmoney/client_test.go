package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
)

func TestSecID(t *testing.T) {
	cases := map[string]string{
		"600519": "1.600519",
		"688981": "1.688981",
		"900901": "1.900901",
		"000858": "0.000858",
		"300750": "0.300750",
		"430047": "0.430047",
	}
	for symbol, want := range cases {
		assert.Equal(t, want, SecID(symbol))
	}
}

func TestDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1.600519", q.Get("secid"))
		assert.Equal(t, "101", q.Get("klt"))
		assert.Equal(t, "1", q.Get("fqt"))
		assert.Equal(t, "20240101", q.Get("beg"))
		assert.Equal(t, "20240105", q.Get("end"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"rc": 0,
			"data": {
				"code": "600519",
				"name": "贵州茅台",
				"klines": [
					"2024-01-02,1680.00,1685.50,1690.00,1675.00,25000",
					"2024-01-03,1685.50,1702.30,1705.00,1682.00,31000",
					"bad,line"
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(5)
	c.baseURL = srv.URL

	series, err := c.Daily(context.Background(), &market.Request{
		Symbol:    "600519",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "600519", series.Symbol)
	assert.Equal(t, "贵州茅台", series.Name)
	require.Len(t, series.Candles, 2)
	assert.Equal(t, "2024-01-02", series.Candles[0].Date)
	assert.Equal(t, 1685.5, series.Candles[0].Close)
	assert.Equal(t, 31000.0, series.Candles[1].Volume)
}

func TestDailyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rc": 100, "msg": "invalid secid"}`))
	}))
	defer srv.Close()

	c := NewClient(5)
	c.baseURL = srv.URL

	_, err := c.Daily(context.Background(), &market.Request{Symbol: "999999"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid secid")
}

func TestDailyEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rc": 0, "data": null}`))
	}))
	defer srv.Close()

	c := NewClient(5)
	c.baseURL = srv.URL

	series, err := c.Daily(context.Background(), &market.Request{Symbol: "600519"})
	require.NoError(t, err)
	assert.Empty(t, series.Candles)
}
