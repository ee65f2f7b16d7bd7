package recurring

import (
	"context"
	"log"
	"time"

	"github.com/awakeapp/AWAKE-sub000/internal/ledger"
)

// Runner walks due rules and turns elapsed periods into ledger commits. It
// is invoked reactively (app foreground, API call); safety under concurrent
// invocation comes from each commit's atomic scope plus the reference-keyed
// replay guard, not from any cross-call lock.
type Runner struct {
	Repo      *Repo
	Committer *ledger.Committer
}

func NewRunner(repo *Repo, committer *ledger.Committer) *Runner {
	return &Runner{Repo: repo, Committer: committer}
}

// RuleOutcome reports one rule's catch-up batch.
type RuleOutcome struct {
	RuleID      string    `json:"rule_id"`
	Label       string    `json:"label"`
	Generated   int       `json:"generated"`
	Replayed    int       `json:"replayed"`
	NextDueDate time.Time `json:"next_due_date"`
	Error       string    `json:"error,omitempty"`
}

type SweepResult struct {
	Processed int           `json:"processed"`
	Generated int           `json:"generated"`
	Failed    int           `json:"failed"`
	Rules     []RuleOutcome `json:"rules"`
}

// Sweep catches up every due rule of the owner. One rule's failure never
// blocks the others, and next_due_date only advances for rules whose whole
// batch committed; a retried batch replays already-committed periods as
// no-ops instead of double-generating them.
func (rn *Runner) Sweep(ctx context.Context, ownerID string, today time.Time) (SweepResult, error) {
	due, err := rn.Repo.ListDue(ctx, ownerID, today)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Rules: make([]RuleOutcome, 0, len(due))}
	for _, rule := range due {
		outcome := rn.advance(ctx, rule, today)
		res.Processed++
		res.Generated += outcome.Generated
		if outcome.Error != "" {
			res.Failed++
		}
		res.Rules = append(res.Rules, outcome)
	}
	return res, nil
}

func (rn *Runner) advance(ctx context.Context, rule Rule, today time.Time) RuleOutcome {
	outcome := RuleOutcome{RuleID: rule.ID, Label: rule.Label, NextDueDate: dateOnly(rule.NextDueDate)}

	dates, nextDue := DuePeriods(rule, today)
	for _, due := range dates {
		commit, err := rn.Committer.Commit(ctx, ledger.CommitRequest{
			OwnerID:       rule.OwnerID,
			AccountID:     rule.AccountID,
			Amount:        rule.Amount,
			Kind:          rule.EntryKind,
			Category:      rule.Category,
			Description:   rule.Label,
			ReferenceID:   rule.ID + ":" + due.Format("2006-01-02"),
			ReferenceType: ledger.RefRecurring,
			OccurredOn:    due,
		})
		if err != nil {
			// Leave next_due_date untouched: the next sweep retries the
			// whole batch and the replay guard skips the committed part.
			log.Printf("recurring rule %s: commit for %s failed: %v", rule.ID, due.Format("2006-01-02"), err)
			outcome.Error = err.Error()
			return outcome
		}
		if commit.Replayed {
			outcome.Replayed++
		} else {
			outcome.Generated++
		}
	}

	stillActive := !Exhausted(rule, nextDue)
	if err := rn.Repo.AdvanceNextDue(ctx, rule.OwnerID, rule.ID, nextDue, stillActive); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.NextDueDate = nextDue
	return outcome
}
