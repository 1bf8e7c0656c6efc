package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"carteira/internal/core"
)

// BackupSheetName is the sheet used in per-user backup workbooks.
const BackupSheetName = "Minhas_Transacoes"

// Workbook renders transactions as a standalone workbook, returned as bytes.
// Used for the bot's backup document and the dashboard's download; the result
// is handed to the caller and never retained on disk.
func Workbook(sheet string, rows []core.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	def := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(def, sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	fillSheet(f, sheet, rows)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BackupFilename names an export uniquely per request.
func BackupFilename(displayName string, now time.Time) string {
	return fmt.Sprintf("backup_%s_%s.xlsx", displayName, now.Format("20060102_150405"))
}
