package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

func TestCommitRequestAmountCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  commitRequest
		want int64
	}{
		{"integer cents", commitRequest{Amount: 1234}, 1234},
		{"decimal string", commitRequest{AmountDecimal: "12.34"}, 1234},
		{"json number major units", commitRequest{AmountMajor: 12.34}, 1234},
		{"json number rounds", commitRequest{AmountMajor: 19.999}, 2000},
		{"decimal string wins over cents", commitRequest{Amount: 99, AmountDecimal: "1.00"}, 100},
		{"json number wins over cents", commitRequest{Amount: 99, AmountMajor: 1.0}, 100},
		{"nothing set", commitRequest{}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.req.amountCents()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommitRequestAmountCentsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   commitRequest
		field string
	}{
		{"malformed decimal string", commitRequest{AmountDecimal: "12.3.4"}, "amount_decimal"},
		{"three decimal places", commitRequest{AmountDecimal: "12.345"}, "amount_decimal"},
		{"json number overflow", commitRequest{AmountMajor: 1e17}, "amount_major"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.req.amountCents()
			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.KindInvalidArgument, derr.Kind)
			assert.Equal(t, tt.field, derr.Field)
		})
	}
}
