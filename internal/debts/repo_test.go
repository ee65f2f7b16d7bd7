package debts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

func TestEditGuard(t *testing.T) {
	t.Parallel()

	amount := func(v int64) *int64 { return &v }
	note := "paid in two parts"
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		amount  *int64
		note    *string
		dueDate *time.Time
		settled int64
		field   string // empty means valid
	}{
		{"amount only", amount(5000), nil, nil, 0, ""},
		{"note only keeps amount", nil, &note, nil, 3000, ""},
		{"due date only keeps amount", nil, nil, &due, 3000, ""},
		{"amount at settled floor", amount(3000), nil, nil, 3000, ""},
		{"nothing to edit", nil, nil, nil, 0, "body"},
		{"zero amount", amount(0), nil, nil, 0, "amount"},
		{"negative amount", amount(-100), nil, nil, 0, "amount"},
		{"amount below settled", amount(2999), nil, nil, 3000, "amount"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := editGuard(tt.amount, tt.note, tt.dueDate, tt.settled)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.KindInvalidArgument, derr.Kind)
			assert.Equal(t, tt.field, derr.Field)
		})
	}
}
