package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		from, to  string
		precision int32
		want      string
	}{
		{name: "inches to centimeters", value: "10", from: "in", to: "cm", precision: 6, want: "25.4"},
		{name: "centimeters to inches", value: "25.4", from: "cm", to: "in", precision: 6, want: "10"},
		{name: "millimeters to centimeters", value: "125", from: "mm", to: "cm", precision: 6, want: "12.5"},
		{name: "yards to meters", value: "2", from: "yd", to: "m", precision: 6, want: "1.8288"},
		{name: "pounds to kilograms", value: "5", from: "lb", to: "kg", precision: 6, want: "2.267962"},
		{name: "ounces to grams", value: "1", from: "oz", to: "g", precision: 6, want: "28.349523"},
		{name: "same unit is rounded only", value: "1.23456789", from: "cm", to: "cm", precision: 6, want: "1.234568"},
		{name: "uppercase symbols accepted", value: "10", from: "IN", to: "CM", precision: 6, want: "25.4"},
		{name: "precision zero truncates to integers", value: "10", from: "in", to: "cm", precision: 0, want: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(decimal.RequireFromString(tt.value), tt.from, tt.to, tt.precision)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"want %s, got %s", tt.want, got)
		})
	}
}

func TestConvert_UnsupportedUnit(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(1), "furlong", "cm", 6)

	var uErr *UnsupportedUnitError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, "furlong", uErr.Unit)

	_, err = Convert(decimal.NewFromInt(1), "cm", "parsec", 6)
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, "parsec", uErr.Unit)

	// Mixing dimensions is an unsupported target, not a silent identity.
	_, err = Convert(decimal.NewFromInt(1), "cm", "kg", 6)
	require.ErrorAs(t, err, &uErr)
}

func TestConvert_RoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"in", "cm"}, {"yd", "m"}, {"mm", "m"},
		{"lb", "kg"}, {"oz", "g"}, {"g", "kg"},
	}
	tolerance := decimal.RequireFromString("0.00001")

	for _, pair := range pairs {
		value := decimal.RequireFromString("13.37")

		there, err := Convert(value, pair[0], pair[1], 6)
		require.NoError(t, err)
		back, err := Convert(there, pair[1], pair[0], 6)
		require.NoError(t, err)

		diff := back.Sub(value).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"%s->%s->%s drifted by %s", pair[0], pair[1], pair[0], diff)
	}
}
