package parse

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/expenseflow/backend/internal/statement"
)

const headerScanRows = 20

// ParseXLSX extracts transactions from a modern Excel workbook.
// Bank exports usually carry several rows of logo/account noise above the
// real header, so the header row is located by keyword scan first.
func ParseXLSX(data []byte) ([]statement.Transaction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, statement.WrapError(statement.ErrInvalidFileFormat, err, "unreadable xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "xlsx workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, statement.WrapError(statement.ErrInvalidFileFormat, err, "read sheet %q", sheets[0])
	}

	return parseSheet(rows)
}

// ParseXLS extracts transactions from a legacy OLE2 Excel workbook.
// Date cells in .xls files frequently surface as raw Excel serial numbers,
// which are converted before the normal date parsing runs.
func ParseXLS(data []byte) ([]statement.Transaction, error) {
	book, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, statement.WrapError(statement.ErrInvalidFileFormat, err, "unreadable xls workbook")
	}

	sheet, err := book.GetSheet(0)
	if err != nil {
		return nil, statement.WrapError(statement.ErrInvalidFileFormat, err, "xls workbook has no sheets")
	}

	var rows [][]string
	for _, xlsRow := range sheet.GetRows() {
		var cells []string
		for _, col := range xlsRow.GetCols() {
			cells = append(cells, col.GetString())
		}
		rows = append(rows, cells)
	}

	return parseSheet(rows)
}

// parseSheet locates the header row, resolves columns and walks the data
// rows. Shared by both Excel container formats.
func parseSheet(rows [][]string) ([]statement.Transaction, error) {
	if len(rows) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "sheet contains no rows")
	}

	headerIdx := detectSheetHeader(rows)
	header := rows[headerIdx]

	cols, ok := resolveColumns(header, dateColumns)
	if !ok {
		return nil, statement.NewError(statement.ErrColumnDetection,
			"could not identify required columns (date, description, amount), found headers: %s",
			strings.Join(header, ", "))
	}

	dataRows := normalizeDateSerials(rows[headerIdx+1:], cols.date)
	transactions := parseRows(dataRows, cols)
	if len(transactions) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "no transactions found in Excel sheet")
	}
	return transactions, nil
}

// detectSheetHeader scans the first rows for one containing a header
// keyword. Falls back to row 0 when nothing matches.
func detectSheetHeader(rows [][]string) int {
	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if containsHeaderKeyword(rows[i]) {
			return i
		}
	}
	return 0
}

// normalizeDateSerials rewrites bare numeric date cells (Excel serials)
// into ISO date strings so the shared date parser can handle them.
func normalizeDateSerials(rows [][]string, dateCol int) [][]string {
	for _, row := range rows {
		if dateCol >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[dateCol])
		serial, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		if t, ok := excelSerialDate(serial); ok {
			row[dateCol] = t.Format("2006-01-02")
		}
	}
	return rows
}

// excelSerialDate converts an Excel 1900-system date serial to a time.
// Serial 1 is 1900-01-01; the epoch is shifted to 1899-12-30 to absorb
// Excel's phantom 1900 leap day.
func excelSerialDate(serial float64) (time.Time, bool) {
	if serial < 1 || serial > 200000 {
		return time.Time{}, false
	}
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	days := int(serial)
	frac := serial - float64(days)
	t := epoch.AddDate(0, 0, days)
	if frac > 0 {
		t = t.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}
	return t, true
}
