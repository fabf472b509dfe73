package parse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/statement"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1234.56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"₹1,234.56", "1234.56", true},
		{"$ 99.00", "99", true},
		{"(250.00)", "-250", true},
		{"1 234.56", "1234.56", true},
		{"1,234.56Cr", "-1234.56", true},
		{"500.00Dr", "500", true},
		{"-42", "-42", true},
		{"", "0", false},
		{"   ", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseAmount(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			}
		})
	}
}

func TestNetAmount(t *testing.T) {
	tests := []struct {
		name     string
		debit    string
		credit   string
		want     string
		polarity statement.Polarity
		keep     bool
	}{
		{"debit only", "500.00", "", "500", statement.Expense, true},
		{"credit only", "", "1200.00", "1200", statement.Income, true},
		{"debit exceeds credit", "800", "300", "500", statement.Expense, true},
		{"credit exceeds debit", "300", "800", "500", statement.Income, true},
		{"balanced transfer dropped", "400", "400", "0", statement.Expense, false},
		{"both blank dropped", "", "", "0", statement.Expense, false},
		{"both zero dropped", "0.00", "0.00", "0", statement.Expense, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, polarity, keep := netAmount(tt.debit, tt.credit)
			assert.Equal(t, tt.keep, keep)
			if tt.keep {
				assert.Equal(t, tt.polarity, polarity)
				assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)), "got %s", amount)
			}
		})
	}
}

func TestSingleAmount(t *testing.T) {
	amount, polarity, keep := singleAmount("-150.00")
	require.True(t, keep)
	assert.Equal(t, statement.Income, polarity)
	assert.True(t, amount.Equal(decimal.RequireFromString("150")))

	amount, polarity, keep = singleAmount("75.50")
	require.True(t, keep)
	assert.Equal(t, statement.Expense, polarity)
	assert.True(t, amount.Equal(decimal.RequireFromString("75.5")))

	_, _, keep = singleAmount("0.00")
	assert.False(t, keep)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/03/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15-Mar-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15 Mar 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"  2024-03-15  ", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"15th March", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %s", got)
			}
		})
	}
}

func TestIsIncomeDescription(t *testing.T) {
	income := []string{
		"NEFT-CR-SALARY MARCH",
		"SALARY CREDIT ACME CORP",
		"UPI/CR/423119/REFUND",
		"CASHBACK FROM AMAZON PAY",
		"INTEREST CREDIT Q4",
		"FD MATURITY PROCEEDS",
		"IMPS-CR-REIMBURSEMENT",
		"CASHDEPOSIT BRANCH",
	}
	for _, d := range income {
		assert.True(t, isIncomeDescription(d), "expected income: %s", d)
	}

	expense := []string{
		"UPI-SWIGGY-FOOD ORDER",
		"CREDIT CARD PAYMENT HDFC",
		"DEPOSIT TO RD ACCOUNT",
		"ATM WDL MUMBAI",
		"",
	}
	for _, d := range expense {
		assert.False(t, isIncomeDescription(d), "expected expense: %s", d)
	}
}

func TestResolveColumns(t *testing.T) {
	cols, ok := resolveColumns([]string{"Txn Date", "Narration", "Withdrawal Amt.", "Deposit Amt.", "Balance"}, dateColumns)
	require.True(t, ok)
	assert.Equal(t, 0, cols.date)
	assert.Equal(t, 1, cols.description)
	assert.Equal(t, 2, cols.amount)
	assert.Equal(t, 3, cols.credit)
	assert.Equal(t, 3, cols.maxIndex())

	cols, ok = resolveColumns([]string{"Date", "Description", "Amount"}, dateColumns)
	require.True(t, ok)
	assert.Equal(t, -1, cols.credit, "single amount column must not double as credit")

	_, ok = resolveColumns([]string{"Foo", "Bar", "Baz"}, dateColumns)
	assert.False(t, ok)
}

func TestParseCSV(t *testing.T) {
	data := []byte(`Date,Description,Debit,Credit
15/03/2024,UPI-SWIGGY-ORDER,450.00,
16/03/2024,NEFT SALARY CREDIT,,50000.00
17/03/2024,INTERNAL TRANSFER,100.00,100.00
bad-date,SHOULD BE SKIPPED,10.00,
18/03/2024,,10.00,
`)

	txs, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "UPI-SWIGGY-ORDER", txs[0].Description)
	assert.Equal(t, statement.Expense, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("450")))

	assert.Equal(t, statement.Income, txs[1].Type)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("50000")))
}

func TestParseCSVSingleAmountColumn(t *testing.T) {
	data := []byte(`Date,Payee,Amount
2024-01-05,GROCERY STORE,89.99
2024-01-06,EMPLOYER LTD,-2500.00
`)

	txs, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, statement.Expense, txs[0].Type)
	assert.Equal(t, statement.Income, txs[1].Type)
}

func TestParseCSVNarrationPolarityFallback(t *testing.T) {
	data := []byte(`Date,Description,Amount
2024-01-05,SALARY MARCH ACME,45000.00
`)

	txs, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, statement.Income, txs[0].Type)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV([]byte("Foo,Bar,Baz\n1,2,3\n"))
	assert.True(t, statement.IsCode(err, statement.ErrColumnDetection))

	_, err = ParseCSV([]byte("Date,Description,Amount\n"))
	assert.True(t, statement.IsCode(err, statement.ErrInvalidFileFormat))

	_, err = ParseCSV(nil)
	assert.True(t, statement.IsCode(err, statement.ErrInvalidFileFormat))
}

func TestDetectSheetHeaderSkipsNoiseRows(t *testing.T) {
	rows := [][]string{
		{"First National Bank"},
		{"Account Statement for 1234567890"},
		{""},
		{"Date", "Narration", "Withdrawal", "Deposit"},
		{"15/03/2024", "UPI-SWIGGY", "450.00", ""},
	}
	assert.Equal(t, 3, detectSheetHeader(rows))
}

func TestExcelSerialDate(t *testing.T) {
	// Serial 45366 is 2024-03-15 in the 1900 date system.
	got, ok := excelSerialDate(45366)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)

	// Values outside a sane statement window are not dates.
	_, ok = excelSerialDate(0.5)
	assert.False(t, ok)
	_, ok = excelSerialDate(5000000)
	assert.False(t, ok)
}

func TestParseSheetWithSerialDates(t *testing.T) {
	rows := [][]string{
		{"Bank of Testing"},
		{"Date", "Particulars", "Debit", "Credit"},
		{"45366", "POS 1234 GROCERY MART", "215.00", ""},
		{"45367", "NEFT-CR-SALARY", "", "30000.00"},
	}

	txs, err := parseSheet(rows)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, statement.Income, txs[1].Type)
}
