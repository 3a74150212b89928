package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

// Repository reads accounts and voucher lines from Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{pool: pool, logger: logger}
}

var errRepositoryNotInitialised = errors.New("accounting repository not initialised")

// FetchAccounts implements AccountSource.
func (r *Repository) FetchAccounts(ctx context.Context, bookID string, types []ledger.AccountType) ([]ledger.Account, error) {
	if r == nil || r.pool == nil {
		return nil, errRepositoryNotInitialised
	}
	rows, err := r.pool.Query(ctx, `SELECT code, name, parent_code, root_code, level, is_debit_normal, account_type, active
FROM accounts
WHERE book_id=$1 AND active AND account_type = ANY($2)`, bookID, typeNames(types))
	if err != nil {
		return nil, r.queryError("fetch accounts", err)
	}
	defer rows.Close()
	var accounts []ledger.Account
	for rows.Next() {
		var (
			a       ledger.Account
			accType string
		)
		if err := rows.Scan(&a.Code, &a.Name, &a.ParentCode, &a.RootCode, &a.Level, &a.IsDebitNormal, &accType, &a.Active); err != nil {
			return nil, r.queryError("fetch accounts", err)
		}
		if a.Type, err = ledger.ParseAccountType(accType); err != nil {
			return nil, fmt.Errorf("accounting: account %s: %w", a.Code, err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError("fetch accounts", err)
	}
	return accounts, nil
}

// FetchLineEntries implements EntrySource. Amounts are read as text so no
// precision is lost on the way into decimal.
func (r *Repository) FetchLineEntries(ctx context.Context, q EntryQuery) ([]ledger.LineEntry, error) {
	if r == nil || r.pool == nil {
		return nil, errRepositoryNotInitialised
	}
	rows, err := r.pool.Query(ctx, `SELECT l.account_code, l.amount::text, l.is_debit, v.id::text, v.voucher_date, l.deleted
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
JOIN accounts a ON a.book_id = v.book_id AND a.code = l.account_code
WHERE v.book_id=$1
  AND a.account_type = ANY($2)
  AND v.voucher_date BETWEEN to_timestamp($3) AND to_timestamp($4)
  AND ($5 OR NOT l.deleted)
ORDER BY v.voucher_date, v.id, l.id`, q.BookID, typeNames(q.Types), q.StartSecond, q.EndSecond, q.IncludeDeleted)
	if err != nil {
		return nil, r.queryError("fetch line entries", err)
	}
	defer rows.Close()
	var entries []ledger.LineEntry
	for rows.Next() {
		var (
			e      ledger.LineEntry
			amount string
		)
		if err := rows.Scan(&e.AccountCode, &amount, &e.IsDebit, &e.VoucherID, &e.VoucherDate, &e.Deleted); err != nil {
			return nil, r.queryError("fetch line entries", err)
		}
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("accounting: voucher %s amount %q: %w", e.VoucherID, amount, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError("fetch line entries", err)
	}
	return entries, nil
}

// Ping reports whether the data store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return errRepositoryNotInitialised
	}
	return r.pool.Ping(ctx)
}

func (r *Repository) queryError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		r.logger.Warn("ledger query rejected",
			slog.String("op", op),
			slog.String("code", pgErr.Code),
			slog.String("message", pgErr.Message))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func typeNames(types []ledger.AccountType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
