package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

func TestTransferIncompleteError(t *testing.T) {
	t.Parallel()

	cause := domain.Unavailable("commit ledger entry", errors.New("connection reset"))
	err := &TransferIncompleteError{
		TransferID:   "t-1",
		DebitEntryID: "e-1",
		Err:          cause,
	}

	assert.Contains(t, err.Error(), "t-1")
	assert.Contains(t, err.Error(), "e-1")

	// The underlying taxonomy kind stays reachable through the wrapper.
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindUnavailable, de.Kind)
	assert.True(t, domain.Retryable(err))
}
