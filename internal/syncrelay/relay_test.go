package syncrelay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	mutations := []Mutation{
		{MutationID: "m1", Type: "CREATE_EXPENSE", Date: "2026-08-01"},
		{MutationID: "m2", Type: "CREATE_EXPENSE", Date: "2026-08-02"},
		{MutationID: "m3", Type: "UPDATE_EXPENSE", Date: "not-a-date"},
		{MutationID: "", Type: "DELETE_EXPENSE", Date: "2026-08-03"},
	}
	locked := map[string]bool{"2026-08-02": true}

	accepted, synced, rejected := evaluate(mutations, locked, nil)

	require.Len(t, accepted, 1)
	assert.Equal(t, "m1", accepted[0].MutationID)
	assert.Equal(t, []string{"m1"}, synced)

	require.Len(t, rejected, 3)
	assert.Equal(t, Rejection{MutationID: "m2", Reason: ReasonDateLocked}, rejected[0])
	assert.Equal(t, Rejection{MutationID: "m3", Reason: ReasonInvalidDate}, rejected[1])
	assert.Equal(t, Rejection{MutationID: "", Reason: ReasonMissingID}, rejected[2])
}

func TestEvaluateReplayedMutationIsSynced(t *testing.T) {
	t.Parallel()

	mutations := []Mutation{
		{MutationID: "m1", Type: "CREATE_EXPENSE", Date: "2026-08-01"},
		{MutationID: "m2", Type: "CREATE_EXPENSE", Date: "2026-08-01"},
	}
	applied := map[string]bool{"m1": true}

	accepted, synced, rejected := evaluate(mutations, nil, applied)

	// m1 was applied by an earlier batch: not re-accepted, still reported
	// synced so the client clears its queue.
	require.Len(t, accepted, 1)
	assert.Equal(t, "m2", accepted[0].MutationID)
	assert.Equal(t, []string{"m1", "m2"}, synced)
	assert.Empty(t, rejected)
}

func TestEvaluateAppliedOnLockedDateStaysSynced(t *testing.T) {
	t.Parallel()

	// The applied check runs before the lock check: a mutation that landed
	// before its day was locked keeps reporting synced on replay.
	mutations := []Mutation{{MutationID: "m1", Type: "CREATE_EXPENSE", Date: "2026-08-01"}}
	locked := map[string]bool{"2026-08-01": true}
	applied := map[string]bool{"m1": true}

	accepted, synced, rejected := evaluate(mutations, locked, applied)

	assert.Empty(t, accepted)
	assert.Equal(t, []string{"m1"}, synced)
	assert.Empty(t, rejected)
}

func TestEvaluateEmptyBatch(t *testing.T) {
	t.Parallel()

	accepted, synced, rejected := evaluate(nil, nil, nil)
	assert.Empty(t, accepted)
	assert.Empty(t, synced)
	assert.Empty(t, rejected)
}
