// Package ingest is the single entry point for turning uploaded statement
// files into transactions: it detects the format, routes to the right
// parser, applies bank templates for PDFs, and summarizes the date range.
package ingest

import (
	"log"

	"github.com/expenseflow/backend/internal/filetype"
	"github.com/expenseflow/backend/internal/parse"
	"github.com/expenseflow/backend/internal/statement"
	"github.com/expenseflow/backend/internal/template"
)

// DefaultMaxUploadBytes caps uploaded statements at 10 MiB.
const DefaultMaxUploadBytes = 10 << 20

// Result is the outcome of parsing one statement file.
type Result struct {
	Transactions []statement.Transaction `json:"transactions"`
	FileType     statement.FileType      `json:"file_type"`
	DateRange    statement.DateRange     `json:"date_range"`
	RowCount     int                     `json:"row_count"`
}

// SummaryResult extends Result with basic amount statistics.
type SummaryResult struct {
	Result
	Summary statement.Summary `json:"summary"`
}

// Parser routes statement files to format-specific parsers. The bank
// template catalog is injected; a nil catalog disables template matching
// and every PDF goes through the generic table parser.
type Parser struct {
	catalog  *template.Catalog
	maxBytes int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxUploadBytes overrides the upload size cap.
func WithMaxUploadBytes(n int) Option {
	return func(p *Parser) { p.maxBytes = n }
}

// NewParser creates a statement parser using the given template catalog.
func NewParser(catalog *template.Catalog, opts ...Option) *Parser {
	p := &Parser{catalog: catalog, maxBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseStatement parses a statement file into transactions. hint overrides
// auto-detection when non-empty; password unlocks encrypted PDFs.
func (p *Parser) ParseStatement(data []byte, hint statement.FileType, password string) (*Result, error) {
	if len(data) == 0 {
		return nil, statement.NewError(statement.ErrInvalidFileFormat, "empty file")
	}
	if len(data) > p.maxBytes {
		return nil, statement.NewError(statement.ErrInvalidFileFormat,
			"file exceeds maximum upload size of %d bytes", p.maxBytes)
	}

	fileType := hint
	if fileType == "" || fileType == statement.FileTypeUnknown {
		fileType = filetype.Detect(data)
		log.Printf("[ingest] auto-detected file type: %s", fileType)
	}

	var (
		transactions []statement.Transaction
		err          error
	)
	switch fileType {
	case statement.FileTypePDF:
		transactions, err = p.parsePDF(data, password)
	case statement.FileTypeXLSX:
		transactions, err = parse.ParseXLSX(data)
	case statement.FileTypeXLS:
		transactions, err = parse.ParseXLS(data)
	case statement.FileTypeCSV:
		transactions, err = parse.ParseCSV(data)
	default:
		return nil, statement.NewError(statement.ErrUnsupportedFormat,
			"unsupported file type %q, supported formats: pdf, excel_xlsx, excel_xls, csv", fileType)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Transactions: transactions,
		FileType:     fileType,
		DateRange:    statement.ExtractDateRange(transactions),
		RowCount:     len(transactions),
	}, nil
}

// ParseStatementWithSummary parses a statement and attaches amount
// statistics for the upload preview.
func (p *Parser) ParseStatementWithSummary(data []byte, hint statement.FileType, password string) (*SummaryResult, error) {
	result, err := p.ParseStatement(data, hint, password)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{
		Result:  *result,
		Summary: statement.Summarize(result.Transactions),
	}, nil
}

// parsePDF extracts the document once and reuses it for template matching
// and parsing. A matched template's extractor runs first; any failure
// falls back to the generic table parser rather than losing the upload.
func (p *Parser) parsePDF(data []byte, password string) ([]statement.Transaction, error) {
	doc, err := parse.ExtractPDF(data, password)
	if err != nil {
		return nil, err
	}

	if p.catalog != nil {
		if tpl := p.catalog.Match(doc.FirstPageText()); tpl != nil {
			log.Printf("[ingest] using bank template: %s", tpl.BankName)
			transactions, err := template.Extract(doc, tpl, p.catalog)
			if err == nil && len(transactions) > 0 {
				return transactions, nil
			}
			if err != nil {
				log.Printf("[ingest] template extraction failed: %v, falling back to generic parser", err)
			}
		} else {
			log.Printf("[ingest] no bank template matched, using generic parser")
		}
	}

	return parse.ParseDocumentTables(doc)
}
