// Package excel persists the ledger in a single .xlsx workbook.
//
// The format is deliberately naive: one sheet with a fixed column set, read
// and rewritten whole on every append. Throughput is O(rows) per write, which
// is acceptable for human-paced recording. An advisory file lock guards the
// read-modify-write cycle so the bot and the dashboard processes cannot lose
// an append to each other; a crash mid-write can still corrupt the file.
package excel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

// SheetName is the single sheet holding the transaction table.
const SheetName = "Transacoes"

const timeLayout = time.RFC3339Nano

var columns = []interface{}{
	"id", "user_id", "username", "tipo", "valor", "categoria", "descricao", "data_criacao",
}

type Store struct {
	path string
	lock *flock.Flock

	// now is swappable in tests
	now func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}
}

// Initialize creates the workbook with only the header row iff the file does
// not exist yet.
func (s *Store) Initialize(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory %s: %w", dir, ledger.ErrUnavailable)
		}
	}
	if _, err := os.Stat(s.path); err == nil {
		slog.InfoContext(ctx, "workbook found", "path", s.path)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %v: %w", s.path, err, ledger.ErrUnavailable)
	}
	if err := s.writeAll(nil); err != nil {
		return err
	}
	slog.InfoContext(ctx, "workbook created", "path", s.path, "sheet", SheetName)
	return nil
}

// Append loads the whole table, adds one row and rewrites the file. The
// exclusive lock is held for the full cycle.
func (s *Store) Append(ctx context.Context, rec ledger.Record) (core.Transaction, error) {
	if err := s.lock.Lock(); err != nil {
		return core.Transaction{}, fmt.Errorf("lock %s: %v: %w", s.lock.Path(), err, ledger.ErrUnavailable)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			slog.ErrorContext(ctx, "unlock failed", "path", s.lock.Path(), "error", err)
		}
	}()

	rows, err := s.readAll()
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          int64(len(rows)) + 1,
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Kind:        rec.Kind,
		Amount:      rec.Amount,
		Category:    rec.Category,
		Note:        rec.Note,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.writeAll(append(rows, tx)); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "transaction appended",
		"id", tx.ID, "user_id", tx.UserID, "kind", string(tx.Kind), "amount", tx.Amount.String())
	return tx, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]core.Transaction, error) {
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("rlock %s: %v: %w", s.lock.Path(), err, ledger.ErrUnavailable)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			slog.ErrorContext(ctx, "unlock failed", "path", s.lock.Path(), "error", err)
		}
	}()
	return s.readAll()
}

func (s *Store) ReadFor(ctx context.Context, userID int64) ([]core.Transaction, error) {
	all, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, tx := range all {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) readAll() ([]core.Transaction, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		// Lazily initialized: an absent file is an empty ledger.
		return nil, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", s.path, err, ledger.ErrUnavailable)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %v: %w", SheetName, err, ledger.ErrUnavailable)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]core.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		tx, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %v: %w", i+2, s.path, err, ledger.ErrUnavailable)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) writeAll(rows []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, SheetName); err != nil {
		return fmt.Errorf("rename sheet: %v: %w", err, ledger.ErrUnavailable)
	}
	fillSheet(f, SheetName, rows)

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save %s: %v: %w", s.path, err, ledger.ErrUnavailable)
	}
	return nil
}

// fillSheet writes the header and one row per transaction.
func fillSheet(f *excelize.File, sheet string, rows []core.Transaction) {
	_ = f.SetColWidth(sheet, "A", "B", 10)
	_ = f.SetColWidth(sheet, "C", "G", 18)
	_ = f.SetColWidth(sheet, "H", "H", 32)
	_ = f.SetSheetRow(sheet, "A1", &columns)
	for i, tx := range rows {
		row := []interface{}{
			tx.ID,
			tx.UserID,
			tx.DisplayName,
			string(tx.Kind),
			tx.Amount.String(),
			tx.Category,
			tx.Note,
			tx.CreatedAt.Format(timeLayout),
		}
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}
}

func parseRow(row []string) (core.Transaction, error) {
	// Trailing empty cells are trimmed by the reader.
	for len(row) < len(columns) {
		row = append(row, "")
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad id %q", row[0])
	}
	userID, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad user_id %q", row[1])
	}
	amount, err := decimal.NewFromString(row[4])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad valor %q", row[4])
	}
	createdAt, err := time.Parse(timeLayout, row[7])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad data_criacao %q", row[7])
	}
	return core.Transaction{
		ID:          id,
		UserID:      userID,
		DisplayName: row[2],
		Kind:        core.Kind(row[3]),
		Amount:      amount,
		Category:    row[5],
		Note:        row[6],
		CreatedAt:   createdAt,
	}, nil
}
