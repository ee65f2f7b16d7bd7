package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

func TestValidateCommit(t *testing.T) {
	t.Parallel()

	valid := CommitRequest{
		OwnerID:     "11111111-1111-1111-1111-111111111111",
		AccountID:   "22222222-2222-2222-2222-222222222222",
		Amount:      2500,
		Kind:        KindDebit,
		Description: "groceries",
	}

	tests := []struct {
		name      string
		mutate    func(r *CommitRequest)
		wantField string
	}{
		{
			name:   "valid request",
			mutate: func(r *CommitRequest) {},
		},
		{
			name:      "missing owner",
			mutate:    func(r *CommitRequest) { r.OwnerID = "" },
			wantField: "owner_id",
		},
		{
			name:      "missing account",
			mutate:    func(r *CommitRequest) { r.AccountID = "  " },
			wantField: "account_id",
		},
		{
			name:      "missing description",
			mutate:    func(r *CommitRequest) { r.Description = "" },
			wantField: "description",
		},
		{
			name:      "bad kind",
			mutate:    func(r *CommitRequest) { r.Kind = "withdrawal" },
			wantField: "kind",
		},
		{
			name:      "zero amount",
			mutate:    func(r *CommitRequest) { r.Amount = 0 },
			wantField: "amount",
		},
		{
			name:      "negative amount",
			mutate:    func(r *CommitRequest) { r.Amount = -100 },
			wantField: "amount",
		},
		{
			name:      "reference id without type",
			mutate:    func(r *CommitRequest) { r.ReferenceID = "rule1:2026-01-01" },
			wantField: "reference",
		},
		{
			name:      "reference type without id",
			mutate:    func(r *CommitRequest) { r.ReferenceType = RefRecurring },
			wantField: "reference",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tt.mutate(&req)
			err := ValidateCommit(req)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var de *domain.Error
			assert.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindInvalidArgument, de.Kind)
			assert.Equal(t, tt.wantField, de.Field)
		})
	}
}
