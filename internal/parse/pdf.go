package parse

import (
	"log"
	"regexp"
	"strings"

	"github.com/expenseflow/backend/internal/statement"
)

// transactionTableKeywords score a candidate table's header text toward
// "this is transaction data".
var transactionTableKeywords = []struct {
	keyword string
	points  int
}{
	{"date", 10},
	{"transaction date", 10},
	{"posting date", 10},
	{"txn date", 10},
	{"value date", 10},
	{"description", 10},
	{"narration", 10},
	{"particulars", 10},
	{"details", 10},
	{"amount", 10},
	{"debit", 10},
	{"credit", 10},
	{"withdrawal", 10},
	{"deposit", 10},
	{"balance", 5},
}

// summaryTableKeywords identify account-summary/metadata tables that must
// be rejected even though they coincidentally mention "balance" or "amount".
var summaryTableKeywords = []string{
	"account no",
	"account number",
	"account type",
	"holder name",
	"primary holder",
	"secondary holder",
	"lien amount",
	"available balance",
	"currency code",
}

// dataRowPatterns match a date-shaped first cell, which marks a row as
// transaction data rather than a header.
var dataRowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{2}/\d{2}/\d{2}`),         // DD/MM/YY
	regexp.MustCompile(`^\d{2}-\d{2}-\d{2}`),         // DD-MM-YY
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),         // DD/MM/YYYY
	regexp.MustCompile(`^\d{2}-[A-Za-z]{3}-\d{4}`),   // DD-Mon-YYYY
}

// ParsePDF runs the generic table pipeline over a statement PDF:
// open (handling encryption), extract text, collect and score candidate
// tables, detect the header, resolve columns and parse rows.
func ParsePDF(data []byte, password string) ([]statement.Transaction, error) {
	reader, err := openPDF(data, password)
	if err != nil {
		return nil, err
	}
	doc, err := extractDocument(reader)
	if err != nil {
		return nil, err
	}
	return ParseDocumentTables(doc)
}

// ParseDocumentTables converts a decoded document's surviving table rows into
// transactions. Pages are walked in order; a header cached from an earlier
// page interprets continuation pages whose own header row is absent.
func ParseDocumentTables(doc *PDFDocument) ([]statement.Transaction, error) {
	var transactions []statement.Transaction
	var cachedHeader []string

	for pageIdx, page := range doc.pages {
		rows := scoredTableRows(page.cellRows)
		if len(rows) == 0 {
			continue
		}
		rows = splitMultilineCells(rows)

		headerIdx, header := detectTableHeader(rows, cachedHeader)
		if header == nil {
			continue
		}
		cachedHeader = header

		cols, ok := resolveColumns(header, pdfDateColumns)
		if !ok {
			log.Printf("[pdf] page %d: unresolved columns in header %v", pageIdx+1, header)
			continue
		}

		transactions = append(transactions, parseRows(rows[headerIdx+1:], cols)...)
	}

	if len(transactions) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "no transaction data found in PDF")
	}
	return transactions, nil
}

// scoredTableRows groups a page's cell rows into candidate tables, scores
// each, and concatenates the rows of every table scoring above zero.
func scoredTableRows(cellRows [][]string) [][]string {
	var kept [][]string
	for _, table := range groupTables(cellRows) {
		if scoreTable(table) <= 0 {
			continue
		}
		kept = append(kept, table...)
	}
	return kept
}

// groupTables splits a page's rows into contiguous runs of multi-cell rows.
// Single-cell rows (titles, footers, page numbers) break tables apart.
func groupTables(cellRows [][]string) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) > 0 {
			tables = append(tables, current)
			current = nil
		}
	}

	for _, row := range cellRows {
		if len(row) < 2 {
			flush()
			continue
		}
		current = append(current, row)
	}
	flush()
	return tables
}

// scoreTable rates how likely a table is to hold transaction data.
// Header keywords add points, account-summary keywords subtract heavily,
// and a minimum row count adds a small bonus.
func scoreTable(table [][]string) int {
	if len(table) < 2 {
		return 0
	}

	headerText := strings.ToLower(strings.Join(table[0], " "))

	score := 0
	if len(table[0]) > 0 && isDateShaped(strings.TrimSpace(table[0][0])) {
		// Continuation pages start directly with data rows; a date-shaped
		// leading cell is as strong a signal as a header keyword.
		score += 10
	}
	for _, kw := range transactionTableKeywords {
		if strings.Contains(headerText, kw.keyword) {
			score += kw.points
		}
	}
	for _, kw := range summaryTableKeywords {
		if strings.Contains(headerText, kw) {
			score -= 20
		}
	}
	if len(table) >= 3 {
		score += 5
	}
	return score
}

// splitMultilineCells expands rows whose cells contain embedded newlines.
// Some layouts pack several transactions into one visual row; each
// newline-delimited value becomes its own synthetic row, aligned by line
// index across all columns.
func splitMultilineCells(rows [][]string) [][]string {
	var expanded [][]string

	for _, row := range rows {
		multiline := false
		for _, cell := range row {
			if strings.Contains(cell, "\n") {
				multiline = true
				break
			}
		}
		if !multiline {
			expanded = append(expanded, row)
			continue
		}

		split := make([][]string, len(row))
		maxLines := 0
		for i, cell := range row {
			split[i] = strings.Split(cell, "\n")
			if len(split[i]) > maxLines {
				maxLines = len(split[i])
			}
		}

		for line := 0; line < maxLines; line++ {
			newRow := make([]string, len(row))
			empty := true
			for i := range row {
				if line < len(split[i]) {
					newRow[i] = strings.TrimSpace(split[i][line])
				}
				if newRow[i] != "" {
					empty = false
				}
			}
			if !empty {
				expanded = append(expanded, newRow)
			}
		}
	}

	return expanded
}

// detectTableHeader finds the header row among the first rows of a page.
// A row whose first cell is date-shaped is data, not a header: in that case
// the header cached from an earlier page wins and data starts at row 0
// (indicated by headerIdx -1). Returns a nil header when nothing usable
// exists and no cache is available.
func detectTableHeader(rows [][]string, cachedHeader []string) (int, []string) {
	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for idx := 0; idx < limit; idx++ {
		row := rows[idx]
		firstCell := ""
		if len(row) > 0 {
			firstCell = strings.TrimSpace(row[0])
		}

		if isDateShaped(firstCell) {
			// Transaction data already: reuse the cached header from a
			// previous page, or give up the scan and treat row 0 onward
			// as data under the page's first row.
			if cachedHeader != nil {
				return -1, cachedHeader
			}
			if idx == 0 {
				return -1, nil
			}
			return idx - 1, rows[idx-1]
		}

		if containsHeaderKeyword(row) {
			return idx, row
		}
	}

	if cachedHeader != nil {
		return -1, cachedHeader
	}
	if len(rows) > 0 {
		return 0, rows[0]
	}
	return -1, nil
}

func isDateShaped(cell string) bool {
	for _, p := range dataRowPatterns {
		if p.MatchString(cell) {
			return true
		}
	}
	return false
}
