// Package service orchestrates the three-phase statement import flow:
// upload and parse, date-range selection with clarification analysis,
// and final categorized import.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseflow/backend/internal/categorize"
	"github.com/expenseflow/backend/internal/describe"
	"github.com/expenseflow/backend/internal/ingest"
	"github.com/expenseflow/backend/internal/session"
	"github.com/expenseflow/backend/internal/statement"
)

// StatementService wires the parser, session store and categorization
// engine behind the three phase operations.
type StatementService struct {
	parser   *ingest.Parser
	sessions *session.Store
	engine   *categorize.Engine
}

// NewStatementService creates the statement import service.
func NewStatementService(parser *ingest.Parser, sessions *session.Store, engine *categorize.Engine) *StatementService {
	return &StatementService{
		parser:   parser,
		sessions: sessions,
		engine:   engine,
	}
}

// UploadResult is the phase-1 response: what was parsed and the session
// the client must quote in the next phases.
type UploadResult struct {
	SessionID string                  `json:"session_id"`
	FileType  statement.FileType      `json:"file_type"`
	RowCount  int                     `json:"row_count"`
	DateRange statement.DateRange     `json:"date_range"`
	Summary   statement.Summary       `json:"summary"`
	Preview   []statement.Transaction `json:"preview"`
}

// previewRows caps how many parsed transactions the upload response echoes
// back for the user to eyeball before selecting a date range.
const previewRows = 5

// ClearItem is a transaction the engine categorized without needing the
// user's input.
type ClearItem struct {
	Transaction statement.Transaction `json:"transaction"`
	Category    string                `json:"category"`
}

// AmbiguousItem is one merchant the user is asked to categorize. Multiple
// transactions sharing the normalized merchant are grouped into one item.
type AmbiguousItem struct {
	Index              int             `json:"index"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Date               time.Time       `json:"date"`
	SuggestedCategory  string          `json:"suggested_category"`
	Confidence         string          `json:"confidence"`
	Alternatives       []string        `json:"alternatives,omitempty"`
	Reasoning          string          `json:"reasoning"`
	NormalizedMerchant string          `json:"normalized_merchant"`
	TransactionCount   int             `json:"transaction_count"`
	AllIndices         []int           `json:"all_indices"`
}

// RangeSelection is the phase-2 response.
type RangeSelection struct {
	Status             string          `json:"status"` // filtered or ready
	FilteredCount      int             `json:"filtered_count"`
	NeedsClarification bool            `json:"needs_clarification"`
	ClearCount         int             `json:"clear_count"`
	AmbiguousItems     []AmbiguousItem `json:"ambiguous_items,omitempty"`
	Message            string          `json:"message"`
}

// ImportedTransaction is a final categorized record ready for persistence
// by the caller, enriched with the structured description fields.
type ImportedTransaction struct {
	statement.Transaction
	Category string           `json:"category"`
	Details  describe.Details `json:"details"`
}

// ImportResult is the phase-3 response.
type ImportResult struct {
	Status       string                `json:"status"`
	Imported     int                   `json:"imported"`
	Skipped      int                   `json:"skipped"`
	Total        int                   `json:"total"`
	Transactions []ImportedTransaction `json:"transactions"`
}

// Upload parses a statement file and opens an upload session holding the
// result. Phase 1 of the import flow.
func (s *StatementService) Upload(ctx context.Context, userID, filename string, data []byte, hint statement.FileType, password string) (*UploadResult, error) {
	result, err := s.parser.ParseStatementWithSummary(data, hint, password)
	if err != nil {
		return nil, err
	}

	sessionID := s.sessions.Create(&session.Session{
		UserID:       userID,
		FileName:     filename,
		FileType:     result.FileType,
		Transactions: result.Transactions,
	})

	preview := result.Transactions
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}

	log.Printf("[service] parsed %d transactions from %s (%s)", result.RowCount, filename, result.FileType)
	return &UploadResult{
		SessionID: sessionID,
		FileType:  result.FileType,
		RowCount:  result.RowCount,
		DateRange: result.DateRange,
		Summary:   result.Summary,
		Preview:   preview,
	}, nil
}

// SelectDateRange filters the session's transactions to the inclusive
// range and analyzes them, splitting clearly-categorizable transactions
// from those needing the user's clarification. Phase 2.
func (s *StatementService) SelectDateRange(ctx context.Context, sessionID string, start, end time.Time) (*RangeSelection, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	filtered, err := statement.FilterByDateRange(sess.Transactions, start, end)
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no transactions found in selected date range")
	}

	clearItems, ambiguousItems := s.analyze(ctx, sess.UserID, filtered)

	sess.Filtered = filtered
	if err := s.sessions.Update(sessionID, sess); err != nil {
		return nil, err
	}

	if len(ambiguousItems) > 0 {
		return &RangeSelection{
			Status:             "filtered",
			FilteredCount:      len(filtered),
			NeedsClarification: true,
			ClearCount:         len(clearItems),
			AmbiguousItems:     ambiguousItems,
			Message:            fmt.Sprintf("Found %d transaction(s) that need clarification", len(ambiguousItems)),
		}, nil
	}
	return &RangeSelection{
		Status:        "ready",
		FilteredCount: len(filtered),
		ClearCount:    len(clearItems),
		Message:       "All transactions are ready to import",
	}, nil
}

// analyze runs the suggestion engine over the filtered transactions,
// grouping clarification requests by normalized merchant so the user
// answers once per merchant rather than once per row.
func (s *StatementService) analyze(ctx context.Context, userID string, filtered []statement.Transaction) ([]ClearItem, []AmbiguousItem) {
	var clearItems []ClearItem
	seen := map[string]*AmbiguousItem{}
	var order []string

	for idx, tx := range filtered {
		if tx.Type == statement.Income {
			clearItems = append(clearItems, ClearItem{Transaction: tx, Category: categorize.CategoryIncome})
			continue
		}

		details := describe.Parse(tx.Description)
		suggestion := s.engine.Suggest(ctx, tx.Description, tx.Amount, userID, details.MerchantName, details.UPIID)

		if !suggestion.NeedsClarification {
			clearItems = append(clearItems, ClearItem{Transaction: tx, Category: suggestion.Category})
			continue
		}

		merchant := categorize.NormalizeMerchant(tx.Description)
		if item, ok := seen[merchant]; ok {
			item.TransactionCount++
			item.AllIndices = append(item.AllIndices, idx)
			continue
		}
		seen[merchant] = &AmbiguousItem{
			Index:              idx,
			Description:        tx.Description,
			Amount:             tx.Amount,
			Date:               tx.Date,
			SuggestedCategory:  suggestion.Category,
			Confidence:         suggestion.Confidence,
			Alternatives:       suggestion.Alternatives,
			Reasoning:          suggestion.Reasoning,
			NormalizedMerchant: merchant,
			TransactionCount:   1,
			AllIndices:         []int{idx},
		}
		order = append(order, merchant)
	}

	ambiguous := make([]AmbiguousItem, 0, len(order))
	for _, merchant := range order {
		item := seen[merchant]
		if item.TransactionCount > 1 {
			item.Reasoning = fmt.Sprintf("%s (%d similar transactions)", item.Reasoning, item.TransactionCount)
		}
		ambiguous = append(ambiguous, *item)
	}
	return clearItems, ambiguous
}

// Import finalizes the session: user clarifications are applied (and
// learned), everything else is auto-categorized, and the session is
// discarded. Phase 3.
func (s *StatementService) Import(ctx context.Context, sessionID string, clarifications map[int]string) (*ImportResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	transactions := sess.Filtered
	if transactions == nil {
		transactions = sess.Transactions
	}

	// A clarification for one transaction covers every other transaction
	// with the same normalized merchant, and is learned immediately.
	merchantCategories := map[string]string{}
	for idx, category := range clarifications {
		if idx < 0 || idx >= len(transactions) {
			continue
		}
		canonical, ok := categorize.IsValidCategory(category)
		if !ok {
			continue
		}
		description := transactions[idx].Description
		if merchant := categorize.NormalizeMerchant(description); merchant != "" {
			merchantCategories[merchant] = canonical
		}
		if _, err := s.engine.ConfirmCategory(ctx, sess.UserID, description, canonical); err != nil {
			log.Printf("[service] could not save learned mapping: %v", err)
		}
	}

	imported := make([]ImportedTransaction, 0, len(transactions))
	for idx, tx := range transactions {
		category := ""
		if raw, ok := clarifications[idx]; ok {
			if canonical, valid := categorize.IsValidCategory(raw); valid {
				category = canonical
			}
		}
		if category == "" {
			if merchant := categorize.NormalizeMerchant(tx.Description); merchant != "" {
				category = merchantCategories[merchant]
			}
		}
		if category == "" {
			category = s.engine.Categorize(ctx, tx.Description, tx.Amount, sess.UserID, tx.Type)
		}

		imported = append(imported, ImportedTransaction{
			Transaction: tx,
			Category:    category,
			Details:     describe.Parse(tx.Description),
		})
	}

	s.sessions.Delete(sessionID)

	return &ImportResult{
		Status:       "imported",
		Imported:     len(imported),
		Skipped:      len(transactions) - len(imported),
		Total:        len(transactions),
		Transactions: imported,
	}, nil
}

// ConfirmCategory records a single category confirmation outside the
// import flow, e.g. when the user recategorizes an expense later.
func (s *StatementService) ConfirmCategory(ctx context.Context, userID, description, category string) (*categorize.Confirmation, error) {
	return s.engine.ConfirmCategory(ctx, userID, description, category)
}

// SessionInfo exposes session store statistics for monitoring.
func (s *StatementService) SessionInfo() session.Info {
	return s.sessions.Info()
}
