// Package filetype classifies uploaded statement bytes by magic signature.
package filetype

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/expenseflow/backend/internal/statement"
)

var (
	pdfMagic  = []byte("%PDF")
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}                         // xlsx is a zip container
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1} // legacy xls compound file
)

const csvSniffLen = 1000

// Detect classifies raw bytes into one of the supported statement formats.
// It never fails: unrecognized content comes back as FileTypeUnknown and the
// caller treats that as an unsupported-format condition.
func Detect(data []byte) statement.FileType {
	if bytes.HasPrefix(data, pdfMagic) {
		return statement.FileTypePDF
	}
	if bytes.HasPrefix(data, zipMagic) {
		return statement.FileTypeXLSX
	}
	if bytes.HasPrefix(data, ole2Magic) {
		return statement.FileTypeXLS
	}
	if looksLikeCSV(data) {
		return statement.FileTypeCSV
	}
	return statement.FileTypeUnknown
}

// looksLikeCSV checks that the prefix decodes as UTF-8 text and contains
// both a comma and a newline, which is as much structure as a headerless
// bank CSV export guarantees.
func looksLikeCSV(data []byte) bool {
	sniff := data
	if len(sniff) > csvSniffLen {
		sniff = sniff[:csvSniffLen]
		// Avoid a false negative from a multi-byte rune cut at the boundary.
		for len(sniff) > 0 && !utf8.Valid(sniff) {
			sniff = sniff[:len(sniff)-1]
		}
	}
	if len(sniff) == 0 || !utf8.Valid(sniff) {
		return false
	}
	text := string(sniff)
	return strings.Contains(text, ",") && strings.ContainsAny(text, "\r\n")
}
