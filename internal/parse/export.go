package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseflow/backend/internal/statement"
)

// Helpers shared with the bank-template strategies, which live in their own
// package but must parse dates, amounts and polarity identically.

// FlexibleDate parses a statement date against the known layout list.
func FlexibleDate(raw string) (time.Time, bool) {
	return parseDate(raw)
}

// Amount parses a raw monetary cell value.
func Amount(raw string) (decimal.Decimal, bool) {
	return parseAmount(raw)
}

// Net reconciles separate debit/credit values into amount and polarity.
// ok is false when the row should be dropped.
func Net(debitRaw, creditRaw string) (decimal.Decimal, statement.Polarity, bool) {
	return netAmount(debitRaw, creditRaw)
}

// IsIncome reports whether a narration text indicates an inbound transaction.
func IsIncome(description string) bool {
	return isIncomeDescription(description)
}

// ExtractPDF opens a statement PDF (handling encryption) and decodes its
// text. The returned document feeds both the template strategies and the
// generic table pipeline.
func ExtractPDF(data []byte, password string) (*PDFDocument, error) {
	reader, err := openPDF(data, password)
	if err != nil {
		return nil, err
	}
	return extractDocument(reader)
}

// NewDocumentFromLines assembles a document from pre-extracted page lines,
// deriving cell rows by splitting each line on runs of two or more spaces.
// Lets the template strategies run over text captured outside the PDF
// decoder.
func NewDocumentFromLines(pages [][]string) *PDFDocument {
	doc := &PDFDocument{}
	for _, lines := range pages {
		page := pdfPage{lines: lines}
		for _, line := range lines {
			var cells []string
			for _, cell := range multiSpace.Split(line, -1) {
				if cell = strings.TrimSpace(cell); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				page.cellRows = append(page.cellRows, cells)
			}
		}
		doc.pages = append(doc.pages, page)
	}
	return doc
}

var multiSpace = regexp.MustCompile(`\s{2,}`)
