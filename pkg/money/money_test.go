package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"19.90", 1990},
		{"19.9", 1990},
		{"20", 2000},
		{"0.01", 1},
		{" 35.50 ", 3550},
		{"30.000", 3000},
		{"-4.25", -425},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Cents())
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.005", "12,50", "1e400"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestParse_Bounds(t *testing.T) {
	top, err := Parse("9999999999.99")
	require.NoError(t, err)
	assert.Equal(t, Max, top)

	for _, in := range []string{"99999999999.99", "10000000000", "-10000000000.00"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, Max.InRange())
	assert.True(t, (-Max).InRange())
	assert.False(t, Sum(MustParse("9999999999.99"), MustParse("0.01")).InRange())
}

func TestSum_NoDrift(t *testing.T) {
	total := Sum(MustParse("19.90"), MustParse("35.50"), MustParse("10.00"))
	assert.Equal(t, "65.40", total.String())

	// 0.1 added ten times is exactly 1.00 in minor units.
	var acc Amount
	for i := 0; i < 10; i++ {
		acc += MustParse("0.10")
	}
	assert.Equal(t, "1.00", acc.String())
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.00", Zero.String())
	assert.Equal(t, "0.05", FromCents(5).String())
	assert.Equal(t, "-0.05", FromCents(-5).String())
	assert.Equal(t, "1234.56", FromCents(123456).String())
}

func TestJSON(t *testing.T) {
	type body struct {
		Price Amount `json:"price"`
	}
	out, err := json.Marshal(body{Price: MustParse("30")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"30.00"}`, string(out))

	var in body
	require.NoError(t, json.Unmarshal([]byte(`{"price":"12.3"}`), &in))
	assert.Equal(t, int64(1230), in.Price.Cents())

	require.NoError(t, json.Unmarshal([]byte(`{"price":12.34}`), &in))
	assert.Equal(t, int64(1234), in.Price.Cents())

	assert.Error(t, json.Unmarshal([]byte(`{"price":"1.234"}`), &in))
}

func TestScan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan("65.40"))
	assert.Equal(t, int64(6540), a.Cents())
	require.NoError(t, a.Scan([]byte("1.5")))
	assert.Equal(t, int64(150), a.Cents())
	require.NoError(t, a.Scan(nil))
	assert.Equal(t, Zero, a)
	assert.Error(t, a.Scan(3.14))

	v, err := MustParse("7.7").Value()
	require.NoError(t, err)
	assert.Equal(t, "7.70", v)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(MustParse("10"), Zero))
	assert.Equal(t, 50, Percent(MustParse("500"), MustParse("1000")))
	assert.Equal(t, 33, Percent(MustParse("1"), MustParse("3")))
	assert.Equal(t, 67, Percent(MustParse("2"), MustParse("3")))
}
