package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "0.01", want: 1},
		{in: "100", want: 10000},
		{in: "-5.50", want: -550},
		{in: "0", want: 0},
		{in: "19.9", want: 1990},
		{in: "  42.00 ", want: 4200},
		{in: "12.345", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "1e3", want: 100000}, // decimal accepts scientific notation
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCents(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidMoney)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloatToCents(t *testing.T) {
	t.Parallel()

	got, err := FloatToCents(12.34)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), got)

	got, err = FloatToCents(19.999)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e18} {
		_, err := FloatToCents(bad)
		assert.ErrorIs(t, err, ErrInvalidMoney)
	}
}

func TestCentsString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "123.45", CentsString(12345))
	assert.Equal(t, "-123.45", CentsString(-12345))
	assert.Equal(t, "0.05", CentsString(5))
	assert.Equal(t, "0.00", CentsString(0))
	assert.Equal(t, "10.00", CentsString(1000))
}
