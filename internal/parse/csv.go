package parse

import (
	"encoding/csv"
	"strings"

	"github.com/expenseflow/backend/internal/statement"
)

// ParseCSV extracts transactions from a CSV bank export.
// The first record is the header row; required columns are resolved through
// the shared synonym lists. Individually malformed rows are skipped; a file
// yielding zero transactions is an InvalidFileFormat error.
func ParseCSV(data []byte) ([]statement.Transaction, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, statement.WrapError(statement.ErrInvalidFileFormat, err, "unreadable CSV content")
	}
	if len(records) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "CSV file has no headers")
	}

	header := records[0]
	cols, ok := resolveColumns(header, dateColumns)
	if !ok {
		return nil, statement.NewError(statement.ErrColumnDetection,
			"could not identify required columns (date, description, amount), found headers: %s",
			strings.Join(header, ", "))
	}

	transactions := parseRows(records[1:], cols)
	if len(transactions) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "no transactions found in CSV")
	}
	return transactions, nil
}

// parseRows walks data rows below a resolved header. Shared by the CSV,
// Excel and PDF table paths since they all reduce to rows of cells.
func parseRows(rows [][]string, cols columnSet) []statement.Transaction {
	var transactions []statement.Transaction

	for _, row := range rows {
		if len(row) <= cols.maxIndex() {
			continue
		}

		date, ok := parseDate(row[cols.date])
		if !ok {
			continue
		}
		description := strings.TrimSpace(row[cols.description])
		if description == "" {
			continue
		}

		var tx statement.Transaction
		if cols.credit >= 0 {
			amount, polarity, keep := netAmount(row[cols.amount], row[cols.credit])
			if !keep {
				continue
			}
			tx = statement.Transaction{Date: date, Description: description, Amount: amount, Type: polarity}
		} else {
			amount, polarity, keep := singleAmount(row[cols.amount])
			if !keep {
				continue
			}
			tx = statement.Transaction{Date: date, Description: description, Amount: amount, Type: polarity}
		}

		// Narration-based fallback: statements without reliable polarity
		// columns still mark credits in the description text.
		if tx.Type == statement.Expense && isIncomeDescription(tx.Description) {
			tx.Type = statement.Income
		}

		transactions = append(transactions, tx)
	}

	return transactions
}
