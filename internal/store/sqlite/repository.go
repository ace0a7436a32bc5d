// Package sqlite persists the canonical transaction list in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db  *sql.DB
	log *applog.Logger
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:  db,
		log: applog.Default(applog.ComponentStore),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List reads every transaction. No ordering is guaranteed; callers sort
// before folding.
func (r *Repository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account, direction, amount, occurred_on, description, category FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// AddMany inserts transactions in one database transaction. Ids already
// present are skipped, so re-running an import never double-counts.
func (r *Repository) AddMany(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO transactions (id, account, direction, amount, occurred_on, description, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, t := range txs {
		res, err := stmt.ExecContext(ctx,
			t.ID, t.Account, string(t.Direction), t.Amount.Amount.String(),
			t.OccurredAt.Key(), t.Description, t.Category)
		if err != nil {
			return added, fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
		added += int(n)
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	r.log.InfoContext(ctx, "Transactions saved to SQLite",
		"requested", len(txs),
		"added", added)

	return added, nil
}

// RemoveByIDs deletes the listed ids. Missing ids are skipped silently,
// which keeps concurrent duplicate cleanups idempotent.
func (r *Repository) RemoveByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, `DELETE FROM transactions WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	removed := 0
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return removed, fmt.Errorf("delete transaction %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("delete transaction %s: %w", id, err)
		}
		removed += int(n)
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}

	r.log.InfoContext(ctx, "Transactions removed from SQLite",
		"requested", len(ids),
		applog.FieldRemoved, removed)

	return removed, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account, direction, amount, occurred_on, description, category
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                 core.Transaction
		direction, amount string
		occurredOn        string
	)
	if err := row.Scan(&t.ID, &t.Account, &direction, &amount, &occurredOn, &t.Description, &t.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Direction = core.Direction(direction)
	m, err := core.ParseMoney(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: bad stored amount %q", t.ID, amount)
	}
	t.Amount = m
	d, err := core.ParseDate(occurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: bad stored date %q", t.ID, occurredOn)
	}
	t.OccurredAt = d
	return t, nil
}

var _ store.TransactionStore = (*Repository)(nil)
