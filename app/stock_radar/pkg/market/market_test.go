package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519", "600519"},
		{"600519.SH", "600519"},
		{"000858.sz", "000858"},
		{"  300750  ", "300750"},
		{"600519.", "600519"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeSymbol(c.in), "input %q", c.in)
	}
}

func TestParseIntervalDays(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", DefaultIntervalDays},
		{"30", 30},
		{"30d", 30},
		{"6m", 180},
		{"1y", 365},
		{"2Y", 730},
		{"0d", 1},
		{"0", 1},
		{"-5", DefaultIntervalDays},
		{"abc", DefaultIntervalDays},
		{"12w", DefaultIntervalDays},
		{"-3d", DefaultIntervalDays},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseIntervalDays(c.in), "input %q", c.in)
	}
}

func TestCalcDateRange(t *testing.T) {
	start, end, norm := CalcDateRange("6m")
	assert.Equal(t, "180d", norm)
	assert.Len(t, start, 10)
	assert.Len(t, end, 10)
	assert.Less(t, start, end)
}
