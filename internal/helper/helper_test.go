package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parse(t *testing.T, s string) primitive.Decimal128 {
	t.Helper()
	d, err := primitive.ParseDecimal128(s)
	require.NoError(t, err)
	return d
}

func TestCompareDecimal128(t *testing.T) {
	tests := []struct {
		name string
		d1   string
		d2   string
		want int
	}{
		{"Less", "99.99", "100", -1},
		{"Equal", "100", "100", 0},
		{"EqualDifferentScale", "10", "10.00", 0},
		{"Greater", "100.01", "100", 1},
		{"NegativeLessThanZero", "-5", "0", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareDecimal128(parse(t, tt.d1), parse(t, tt.d2))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("NaNFails", func(t *testing.T) {
		_, err := CompareDecimal128(parse(t, "NaN"), parse(t, "1"))
		assert.Error(t, err)
	})
}

func TestDecimal128IsPositive(t *testing.T) {
	assert.True(t, Decimal128IsPositive(parse(t, "0.01")))
	assert.False(t, Decimal128IsPositive(parse(t, "0")))
	assert.False(t, Decimal128IsPositive(parse(t, "-1")))
	assert.False(t, Decimal128IsPositive(parse(t, "NaN")))
	// the zero value decodes as 0
	assert.False(t, Decimal128IsPositive(primitive.Decimal128{}))
}

func TestDecimal128Equal(t *testing.T) {
	assert.True(t, Decimal128Equal(parse(t, "10"), parse(t, "10.00")))
	assert.False(t, Decimal128Equal(parse(t, "10"), parse(t, "10.01")))
	assert.False(t, Decimal128Equal(parse(t, "NaN"), parse(t, "NaN")))
}
