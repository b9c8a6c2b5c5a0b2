package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulQtyIsExact(t *testing.T) {
	tests := map[string]struct {
		price string
		qty   int
		want  string
	}{
		"fractional price":     {price: "2.50", qty: 3, want: "7.50"},
		"whole price":          {price: "3", qty: 4, want: "12.00"},
		"float trap":           {price: "0.10", qty: 3, want: "0.30"},
		"large quantity":       {price: "19.99", qty: 1000, want: "19990.00"},
		"zero priced products": {price: "0", qty: 7, want: "0.00"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := MustParse(tt.price).MulQty(tt.qty)
			assert.Equal(t, tt.want, got.String())
			assert.True(t, got.Equal(MustParse(tt.want)))
		})
	}
}

func TestSum(t *testing.T) {
	got := Sum(MustParse("7.50"), MustParse("12.00"))
	assert.Equal(t, "19.50", got.String())
	assert.True(t, Sum().IsZero())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1950), MustParse("19.50").MinorUnits())
	assert.Equal(t, int64(1), MustParse("0.005").MinorUnits())
	assert.Equal(t, int64(12345), FromCents(12345).MinorUnits())
	assert.Equal(t, int64(2999), MustParse("29.99").MinorUnits())
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(MustParse("19.5"))
	require.NoError(t, err)
	assert.JSONEq(t, `"19.50"`, string(data))

	var fromNumber Amount
	require.NoError(t, json.Unmarshal([]byte(`3.25`), &fromNumber))
	assert.Equal(t, "3.25", fromNumber.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("twelve")
	require.Error(t, err)
}

func TestMaxStored(t *testing.T) {
	assert.Equal(t, "9999999999.99", MaxStored.String())
	assert.False(t, MaxStored.GreaterThan(MaxStored))
	assert.True(t, MaxStored.Add(MustParse("0.01")).GreaterThan(MaxStored))
}
