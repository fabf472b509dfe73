// Package statement defines the core transaction model shared by the
// format parsers, the description parser and the categorization engine.
package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Polarity is the direction of a transaction: money leaving or entering
// the account. Amounts are always stored positive; direction lives here.
type Polarity string

const (
	Expense Polarity = "expense"
	Income  Polarity = "income"
)

// Transaction is a single normalized row extracted from a bank statement.
// Immutable once produced by a parser.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Polarity        `json:"type"`
}

// FileType identifies the container format of an uploaded statement.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeCSV     FileType = "csv"
	FileTypeXLSX    FileType = "excel_xlsx"
	FileTypeXLS     FileType = "excel_xls"
	FileTypeUnknown FileType = "unknown"
)

// IsExcel reports whether the type is one of the two Excel containers.
func (ft FileType) IsExcel() bool {
	return ft == FileTypeXLSX || ft == FileTypeXLS
}

// Summary aggregates a parsed batch for preview responses.
type Summary struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageAmount decimal.Decimal `json:"average_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	Count         int             `json:"count"`
}

// Summarize computes batch statistics over the transaction amounts.
func Summarize(txs []Transaction) Summary {
	s := Summary{Count: len(txs)}
	if len(txs) == 0 {
		return s
	}
	s.MaxAmount = txs[0].Amount
	s.MinAmount = txs[0].Amount
	for _, tx := range txs {
		s.TotalAmount = s.TotalAmount.Add(tx.Amount)
		if tx.Amount.GreaterThan(s.MaxAmount) {
			s.MaxAmount = tx.Amount
		}
		if tx.Amount.LessThan(s.MinAmount) {
			s.MinAmount = tx.Amount
		}
	}
	s.AverageAmount = s.TotalAmount.DivRound(decimal.NewFromInt(int64(len(txs))), 2)
	return s
}
