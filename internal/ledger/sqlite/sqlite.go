// Package sqlite is an alternative Store backend behind the same port,
// for installations that outgrow the whole-file workbook rewrite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

const timeLayout = time.RFC3339Nano

// dsn opens the file so every transaction starts as BEGIN IMMEDIATE, taking
// the write lock up front. Concurrent writers then queue on the busy timeout
// instead of failing at commit.
func dsn(path string) string {
	return "file:" + path + "?_txlock=immediate&_pragma=busy_timeout(10000)"
}

type Store struct {
	db   *sql.DB
	path string

	now func() time.Time
}

func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %v: %w", err, ledger.ErrUnavailable)
		}
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %v: %w", err, ledger.ErrUnavailable)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %v: %w", err, ledger.ErrUnavailable)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Initialize runs the embedded migrations; re-running them is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	if err := RunMigrations(s.path); err != nil {
		return fmt.Errorf("run migrations: %v: %w", err, ledger.ErrUnavailable)
	}
	slog.InfoContext(ctx, "sqlite schema ready", "path", s.path)
	return nil
}

// Append keeps the count+1 ID assignment inside a single immediate
// transaction so two writers on the same database cannot mint the same ID.
func (s *Store) Append(ctx context.Context, rec ledger.Record) (core.Transaction, error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %v: %w", err, ledger.ErrUnavailable)
	}
	defer dbtx.Rollback()

	var count int64
	if err := dbtx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return core.Transaction{}, fmt.Errorf("count rows: %v: %w", err, ledger.ErrUnavailable)
	}

	tx := core.Transaction{
		ID:          count + 1,
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Kind:        rec.Kind,
		Amount:      rec.Amount,
		Category:    rec.Category,
		Note:        rec.Note,
		CreatedAt:   s.now().UTC(),
	}
	_, err = dbtx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, username, tipo, valor, categoria, descricao, data_criacao)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.DisplayName, string(tx.Kind), tx.Amount.String(),
		tx.Category, tx.Note, tx.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %v: %w", err, ledger.ErrUnavailable)
	}
	if err := dbtx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %v: %w", err, ledger.ErrUnavailable)
	}

	slog.InfoContext(ctx, "transaction appended",
		"id", tx.ID, "user_id", tx.UserID, "kind", string(tx.Kind), "amount", tx.Amount.String())
	return tx, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]core.Transaction, error) {
	return s.query(ctx, `
		SELECT id, user_id, username, tipo, valor, categoria, descricao, data_criacao
		FROM transactions ORDER BY id`)
}

func (s *Store) ReadFor(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.query(ctx, `
		SELECT id, user_id, username, tipo, valor, categoria, descricao, data_criacao
		FROM transactions WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %v: %w", err, ledger.ErrUnavailable)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			kind      string
			amount    string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.DisplayName, &kind, &amount, &tx.Category, &tx.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %v: %w", err, ledger.ErrUnavailable)
		}
		tx.Kind = core.Kind(kind)
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad valor %q: %w", amount, ledger.ErrUnavailable)
		}
		if tx.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("bad data_criacao %q: %w", createdAt, ledger.ErrUnavailable)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %v: %w", err, ledger.ErrUnavailable)
	}
	return out, nil
}
