package ledger

import (
	"strings"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// ValidateCommit checks payload shape and numeric sanity before any storage
// access. Pure: no I/O, no side effects.
func ValidateCommit(req CommitRequest) error {
	if strings.TrimSpace(req.OwnerID) == "" {
		return domain.Invalid("owner_id", "required")
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return domain.Invalid("account_id", "required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return domain.Invalid("description", "required")
	}
	if !req.Kind.Valid() {
		return domain.Invalid("kind", "must be debit or credit")
	}
	if req.Amount == 0 {
		return domain.Invalid("amount", "must not be zero")
	}
	if req.Amount < 0 {
		return domain.Invalid("amount", "must be positive; direction is carried by kind")
	}
	if (req.ReferenceID == "") != (req.ReferenceType == "") {
		return domain.Invalid("reference", "reference_id and reference_type must be set together")
	}
	return nil
}
