package syncrelay

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// Relay is the spreadsheet-style batch backend: it accepts a client's queued
// mutations, applies the accepted ones idempotently by mutation id, and
// rejects mutations dated on locked days.
type Relay struct {
	Pool *pgxpool.Pool
}

func NewRelay(pool *pgxpool.Pool) *Relay {
	return &Relay{Pool: pool}
}

// evaluate partitions mutations into synced ids and rejections given the
// locked-day set and the ids already applied. Pure.
func evaluate(mutations []Mutation, locked map[string]bool, applied map[string]bool) (accepted []Mutation, synced []string, rejected []Rejection) {
	for _, m := range mutations {
		id := strings.TrimSpace(m.MutationID)
		if id == "" {
			rejected = append(rejected, Rejection{MutationID: m.MutationID, Reason: ReasonMissingID})
			continue
		}
		if applied[id] {
			// Replayed mutation: already applied, report as synced.
			synced = append(synced, id)
			continue
		}
		if _, err := time.Parse("2006-01-02", m.Date); err != nil {
			rejected = append(rejected, Rejection{MutationID: id, Reason: ReasonInvalidDate})
			continue
		}
		if locked[m.Date] {
			rejected = append(rejected, Rejection{MutationID: id, Reason: ReasonDateLocked})
			continue
		}
		accepted = append(accepted, m)
		synced = append(synced, id)
	}
	return accepted, synced, rejected
}

// Process applies one batch. Accepted mutations land in one transaction;
// the response always carries the caller's current locked dates so the
// client can stop queueing against them.
func (r *Relay) Process(ctx context.Context, ownerID string, req BatchRequest) (BatchResponse, error) {
	locked, err := r.lockedDates(ctx, ownerID)
	if err != nil {
		return BatchResponse{}, err
	}

	applied := make(map[string]bool)
	if len(req.Mutations) > 0 {
		ids := make([]string, 0, len(req.Mutations))
		for _, m := range req.Mutations {
			if strings.TrimSpace(m.MutationID) != "" {
				ids = append(ids, m.MutationID)
			}
		}
		rows, err := r.Pool.Query(ctx, `
SELECT mutation_id FROM sync_mutations
WHERE owner_id = $1::uuid AND mutation_id = ANY($2)
`, ownerID, ids)
		if err != nil {
			return BatchResponse{}, domain.FromStorage("read applied mutations", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return BatchResponse{}, domain.FromStorage("scan applied mutation", err)
			}
			applied[id] = true
		}
		if err := rows.Err(); err != nil {
			return BatchResponse{}, domain.FromStorage("read applied mutations", err)
		}
	}

	lockedSet := make(map[string]bool, len(locked))
	for _, d := range locked {
		lockedSet[d] = true
	}

	accepted, synced, rejected := evaluate(req.Mutations, lockedSet, applied)

	if len(accepted) > 0 || len(req.Logs) > 0 {
		tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return BatchResponse{}, domain.Unavailable("begin sync batch", err)
		}
		defer tx.Rollback(ctx)

		for _, m := range accepted {
			if _, err := tx.Exec(ctx, `
INSERT INTO sync_mutations (owner_id, mutation_id, type, dated_on, data)
VALUES ($1::uuid, $2, $3, $4::date, $5)
ON CONFLICT (owner_id, mutation_id) DO NOTHING
`, ownerID, m.MutationID, m.Type, m.Date, []byte(m.Data)); err != nil {
				return BatchResponse{}, domain.FromStorage("apply mutation", err)
			}
		}
		for _, line := range req.Logs {
			if _, err := tx.Exec(ctx, `
INSERT INTO sync_logs (owner_id, line) VALUES ($1::uuid, $2)
`, ownerID, []byte(line)); err != nil {
				return BatchResponse{}, domain.FromStorage("store sync log", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return BatchResponse{}, domain.FromStorage("commit sync batch", err)
		}
	}

	if synced == nil {
		synced = []string{}
	}
	if rejected == nil {
		rejected = []Rejection{}
	}
	return BatchResponse{
		Success:           len(rejected) == 0,
		SyncedMutationIDs: synced,
		RejectedMutations: rejected,
		LockedDates:       locked,
	}, nil
}

func (r *Relay) lockedDates(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT dated_on::text FROM sync_locked_dates
WHERE owner_id = $1::uuid
ORDER BY dated_on ASC
`, ownerID)
	if err != nil {
		return nil, domain.FromStorage("list locked dates", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, domain.FromStorage("scan locked date", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LockDate closes a business day for further mutations.
func (r *Relay) LockDate(ctx context.Context, ownerID, date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Invalid("date", "must be YYYY-MM-DD")
	}
	if _, err := r.Pool.Exec(ctx, `
INSERT INTO sync_locked_dates (owner_id, dated_on)
VALUES ($1::uuid, $2::date)
ON CONFLICT (owner_id, dated_on) DO NOTHING
`, ownerID, date); err != nil {
		return domain.FromStorage("lock date", err)
	}
	return nil
}
