package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/statement"
)

var sampleCSV = []byte("Date,Description,Debit,Credit\n" +
	"01/02/2024,UPI-SWIGGY-12345678,200.00,\n" +
	"02/02/2024,NEFT SALARY CREDIT,,50000.00\n")

func TestParseStatementAutoDetectsCSV(t *testing.T) {
	p := NewParser(nil)

	result, err := p.ParseStatement(sampleCSV, "", "")
	require.NoError(t, err)

	assert.Equal(t, statement.FileTypeCSV, result.FileType)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, statement.Expense, result.Transactions[0].Type)
	assert.Equal(t, statement.Income, result.Transactions[1].Type)
	assert.Equal(t, 2, result.RowCount)
	assert.False(t, result.DateRange.Start.IsZero())
}

func TestParseStatementHonorsHint(t *testing.T) {
	p := NewParser(nil)

	result, err := p.ParseStatement(sampleCSV, statement.FileTypeCSV, "")
	require.NoError(t, err)

	assert.Equal(t, statement.FileTypeCSV, result.FileType)
}

func TestParseStatementRejectsEmpty(t *testing.T) {
	p := NewParser(nil)

	_, err := p.ParseStatement(nil, "", "")

	assert.True(t, statement.IsCode(err, statement.ErrInvalidFileFormat))
}

func TestParseStatementEnforcesSizeCap(t *testing.T) {
	p := NewParser(nil, WithMaxUploadBytes(16))

	_, err := p.ParseStatement(bytes.Repeat([]byte("a,b\n"), 10), statement.FileTypeCSV, "")

	assert.True(t, statement.IsCode(err, statement.ErrInvalidFileFormat))
}

func TestParseStatementUnknownFormat(t *testing.T) {
	p := NewParser(nil)

	_, err := p.ParseStatement([]byte{0x00, 0x01, 0x02, 0x03}, "", "")

	assert.True(t, statement.IsCode(err, statement.ErrUnsupportedFormat))
}

func TestParseStatementWithSummary(t *testing.T) {
	p := NewParser(nil)

	result, err := p.ParseStatementWithSummary(sampleCSV, "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Count)
	assert.True(t, result.Summary.MaxAmount.GreaterThan(result.Summary.MinAmount))
}
