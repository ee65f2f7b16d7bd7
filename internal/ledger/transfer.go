package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// TransferResult reports both legs. Each leg is its own atomic scope; there
// is no cross-account transaction, so a crash between legs leaves the debit
// landed without the credit (see ErrTransferIncomplete handling).
type TransferResult struct {
	TransferID string       `json:"transfer_id"`
	Debit      CommitResult `json:"debit"`
	Credit     CommitResult `json:"credit"`
}

// TransferIncompleteError reports a landed debit whose matching credit
// failed. The caller must reconcile (retry the credit leg with the same
// transfer id, or reverse the debit entry); blind re-submitting the whole
// transfer is safe because both legs are reference-keyed.
type TransferIncompleteError struct {
	TransferID   string
	DebitEntryID string
	Err          error
}

func (e *TransferIncompleteError) Error() string {
	return fmt.Sprintf("transfer %s incomplete: debit entry %s landed, credit failed: %v",
		e.TransferID, e.DebitEntryID, e.Err)
}

func (e *TransferIncompleteError) Unwrap() error { return e.Err }

// Transfer moves an amount between two accounts of the same owner as two
// reference-keyed commits: debit source, then credit destination. Passing a
// non-empty transferID retries a previous attempt idempotently.
func (cm *Committer) Transfer(ctx context.Context, ownerID, fromAccountID, toAccountID string, amount int64, description, transferID string) (TransferResult, error) {
	if fromAccountID == toAccountID {
		return TransferResult{}, domain.Invalid("to_account_id", "must differ from from_account_id")
	}
	if transferID == "" {
		transferID = uuid.NewString()
	}

	debit, err := cm.Commit(ctx, CommitRequest{
		OwnerID:       ownerID,
		AccountID:     fromAccountID,
		Amount:        amount,
		Kind:          KindDebit,
		Category:      "transfer",
		Description:   description,
		ReferenceID:   transferID + ":out",
		ReferenceType: RefTransfer,
	})
	if err != nil {
		return TransferResult{}, err
	}

	credit, err := cm.Commit(ctx, CommitRequest{
		OwnerID:       ownerID,
		AccountID:     toAccountID,
		Amount:        amount,
		Kind:          KindCredit,
		Category:      "transfer",
		Description:   description,
		ReferenceID:   transferID + ":in",
		ReferenceType: RefTransfer,
	})
	if err != nil {
		return TransferResult{}, &TransferIncompleteError{
			TransferID:   transferID,
			DebitEntryID: debit.LedgerEntryID,
			Err:          err,
		}
	}

	return TransferResult{TransferID: transferID, Debit: debit, Credit: credit}, nil
}
