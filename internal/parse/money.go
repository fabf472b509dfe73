package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expenseflow/backend/internal/statement"
)

var currencySymbols = regexp.MustCompile(`[$€£¥₹]`)

// parseAmount converts a raw cell value into a decimal amount.
// Handles currency symbols, thousands separators, embedded spaces and
// accountant-style parentheses for negatives. Returns ok=false for blank
// or unparseable values.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	s = currencySymbols.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	// Cr/Dr suffixes mark polarity inline in some single-column exports.
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "CR") {
		negative = true
		s = s[:len(s)-2]
	} else if strings.HasSuffix(upper, "DR") {
		s = s[:len(s)-2]
	}

	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// netAmount reconciles separate debit and credit cells into a signed amount
// and polarity. Returns ok=false when the row should be dropped: both cells
// blank/zero, or debit == credit (a balanced internal transfer).
func netAmount(debitRaw, creditRaw string) (decimal.Decimal, statement.Polarity, bool) {
	debit, _ := parseAmount(debitRaw)
	credit, _ := parseAmount(creditRaw)

	if debit.IsZero() && credit.IsZero() {
		return decimal.Zero, statement.Expense, false
	}

	net := debit.Sub(credit)
	if net.IsZero() {
		return decimal.Zero, statement.Expense, false
	}
	if net.IsPositive() {
		return net, statement.Expense, true
	}
	return net.Abs(), statement.Income, true
}

// singleAmount interprets a lone amount column: negative values flip
// polarity to income and are stored positive; zero rows are dropped.
func singleAmount(raw string) (decimal.Decimal, statement.Polarity, bool) {
	amount, ok := parseAmount(raw)
	if !ok || amount.IsZero() {
		return decimal.Zero, statement.Expense, false
	}
	if amount.IsNegative() {
		return amount.Abs(), statement.Income, true
	}
	return amount, statement.Expense, true
}
