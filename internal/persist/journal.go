package persist

import (
	"context"
	"fmt"
	"time"
)

// JournalEntry is one ledger posting of one village.
type JournalEntry struct {
	Village uint64
	Rule    string
	Delta   int32
	Balance int32
	At      time.Time
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append writes a batch of entries in a single transaction.
func (r *JournalRepo) Append(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if r.db.Pool != nil {
		return r.appendPgx(ctx, entries)
	}
	return r.appendSQL(ctx, entries)
}

func (r *JournalRepo) appendPgx(ctx context.Context, entries []JournalEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ledger_journal (village_id, rule, delta, balance, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(e.Village), e.Rule, e.Delta, e.Balance, e.At,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *JournalRepo) appendSQL(ctx context.Context, entries []JournalEntry) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_journal (village_id, rule, delta, balance, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("journal prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, int64(e.Village), e.Rule, e.Delta, e.Balance, e.At.UnixMilli()); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns how many entries a village has journaled.
func (r *JournalRepo) Count(ctx context.Context, village uint64) (int, error) {
	q := `SELECT COUNT(*) FROM ledger_journal WHERE village_id = ?`
	if r.db.Dialect == DialectPostgres {
		q = `SELECT COUNT(*) FROM ledger_journal WHERE village_id = $1`
	}
	var n int
	if err := r.db.SQL.QueryRowContext(ctx, q, int64(village)).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}
