package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

func TestPlanCommit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		current     int64
		kind        EntryKind
		amount      int64
		wantDelta   int64
		wantBalance int64
	}{
		{
			name:        "debit reduces balance",
			current:     5000,
			kind:        KindDebit,
			amount:      2000,
			wantDelta:   -2000,
			wantBalance: 3000,
		},
		{
			name:        "credit raises balance",
			current:     3000,
			kind:        KindCredit,
			amount:      1500,
			wantDelta:   1500,
			wantBalance: 4500,
		},
		{
			name:        "debit to exactly zero",
			current:     2500,
			kind:        KindDebit,
			amount:      2500,
			wantDelta:   -2500,
			wantBalance: 0,
		},
		{
			name:        "credit from zero",
			current:     0,
			kind:        KindCredit,
			amount:      100,
			wantDelta:   100,
			wantBalance: 100,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			delta, balance, err := planCommit(tt.current, tt.kind, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, delta)
			assert.Equal(t, tt.wantBalance, balance)
		})
	}
}

func TestPlanCommitInsufficientFunds(t *testing.T) {
	t.Parallel()

	_, _, err := planCommit(3000, KindDebit, 5000)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindInsufficientFunds, de.Kind)
	assert.Equal(t, int64(3000), de.Available)
	assert.Equal(t, int64(5000), de.Required)
	assert.False(t, domain.Retryable(err), "a failed debit must not be retried blindly")
}

func TestEntryKindSigned(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(-700), KindDebit.Signed(700))
	assert.Equal(t, int64(700), KindCredit.Signed(700))
}

// The invariant behind VerifyBalance: opening balance plus the signed sum of
// active entries reconstructs the stored balance, and a reversal pair drops
// out of the active set as a unit.
func TestActiveEntrySumReconstruction(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Amount: 5000, Kind: KindCredit, State: StateActive},
		{Amount: 2000, Kind: KindDebit, State: StateActive},
		{Amount: 800, Kind: KindDebit, State: StateSoftDeleted},  // reversed original
		{Amount: 800, Kind: KindCredit, State: StateSoftDeleted}, // its reversal
	}

	var sum int64
	for _, e := range entries {
		if e.State == StateActive {
			sum += e.Kind.Signed(e.Amount)
		}
	}

	opening := int64(1000)
	assert.Equal(t, int64(4000), sum)
	assert.Equal(t, int64(5000), opening+sum)
}
