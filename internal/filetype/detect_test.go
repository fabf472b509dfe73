package filetype

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/expenseflow/backend/internal/statement"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want statement.FileType
	}{
		{
			name: "pdf magic",
			data: []byte("%PDF-1.7\n%âãÏÓ"),
			want: statement.FileTypePDF,
		},
		{
			name: "zip container is xlsx",
			data: []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00},
			want: statement.FileTypeXLSX,
		},
		{
			name: "ole2 compound file is xls",
			data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00},
			want: statement.FileTypeXLS,
		},
		{
			name: "comma separated text with newlines",
			data: []byte("Date,Description,Amount\n01/02/2024,UPI-SWIGGY,450.00\n"),
			want: statement.FileTypeCSV,
		},
		{
			name: "text without commas",
			data: []byte("hello world\nno delimiters here\n"),
			want: statement.FileTypeUnknown,
		},
		{
			name: "text without newlines",
			data: []byte("a,b,c on a single line"),
			want: statement.FileTypeUnknown,
		},
		{
			name: "binary garbage",
			data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE},
			want: statement.FileTypeUnknown,
		},
		{
			name: "empty input",
			data: nil,
			want: statement.FileTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.data))
		})
	}
}

func TestDetectSniffsOnlyPrefix(t *testing.T) {
	// A CSV header followed by binary padding past the sniff window must
	// still classify as CSV; only the first kilobyte is inspected.
	data := append([]byte("Date,Narration\n01/01/2024,ATM WDL\n"), bytes.Repeat([]byte{0xFF}, 2000)...)
	assert.Equal(t, statement.FileTypeCSV, Detect(data))
}

func TestDetectTruncatedRuneAtBoundary(t *testing.T) {
	// Fill to just under the sniff window, then place a multi-byte rune
	// straddling the cut. The truncated prefix must still sniff as CSV.
	head := []byte("Date,Description\n")
	pad := bytes.Repeat([]byte{'x'}, csvSniffLen-len(head)-1)
	data := append(append(head, pad...), []byte("ありがとう")...)
	assert.Equal(t, statement.FileTypeCSV, Detect(data))
}
