package categorize

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseflow/backend/internal/statement"
	"github.com/expenseflow/backend/internal/store"
)

// Sources describe which strategy produced a category.
const (
	SourceIncome   = "income"
	SourceLearned  = "learned"
	SourceKeyword  = "keyword"
	SourceMerchant = "merchant"
	SourceOracle   = "oracle"
	SourceFallback = "fallback"
)

// Result carries a categorization suggestion with provenance, used when
// the caller needs to decide whether to ask the user for clarification.
type Result struct {
	Category           string   `json:"category"`
	Source             string   `json:"source"`
	Confidence         string   `json:"confidence"`
	Alternatives       []string `json:"alternatives,omitempty"`
	Reasoning          string   `json:"reasoning,omitempty"`
	NeedsClarification bool     `json:"needs_clarification"`
}

// Confirmation reports the outcome of a confirm-category call.
type Confirmation struct {
	Action  string                `json:"action"` // created or updated
	Mapping store.MerchantMapping `json:"mapping"`
}

// Engine layers the categorization strategies. The oracle is optional;
// without one, descriptions that reach that tier default to Other.
type Engine struct {
	store  store.Store
	oracle Oracle
}

// NewEngine creates a categorization engine backed by the given learned
// mapping store and classifier oracle. oracle may be nil.
func NewEngine(st store.Store, oracle Oracle) *Engine {
	return &Engine{store: st, oracle: oracle}
}

// Categorize assigns a category to a transaction. Strategy order:
// income short-circuit, learned mapping confirmed at least twice, keyword
// table, any learned mapping, and finally the oracle — but only for
// descriptions judged ambiguous, to bound calls to the rate-limited
// external service.
func (e *Engine) Categorize(ctx context.Context, description string, amount decimal.Decimal, userID string, txType statement.Polarity) string {
	if description == "" {
		return CategoryOther
	}

	if txType == statement.Income {
		return CategoryIncome
	}

	learned := e.learnedMapping(ctx, userID, description)
	if learned != nil && learned.Confidence >= 2 {
		return learned.Category
	}

	if category := MatchKeywords(description); category != "" {
		return category
	}

	if learned != nil && learned.Confidence >= 1 {
		return learned.Category
	}

	if e.oracle != nil && IsAmbiguous(description) {
		c, err := e.oracle.Classify(ctx, description, amount)
		if err != nil {
			log.Printf("[categorize] classifier failed for %q: %v", description, err)
			return CategoryOther
		}
		return c.Category
	}

	return CategoryOther
}

// Suggest produces a categorization suggestion with provenance and a
// clarification flag, used by the import flow to decide which
// transactions need the user's input.
func (e *Engine) Suggest(ctx context.Context, description string, amount decimal.Decimal, userID, merchantName, upiID string) Result {
	if learned := e.learnedMapping(ctx, userID, description); learned != nil {
		confidence := ConfidenceMedium
		if learned.Confidence >= 3 {
			confidence = ConfidenceHigh
		}
		return Result{
			Category:   learned.Category,
			Source:     SourceLearned,
			Confidence: confidence,
			Reasoning:  fmt.Sprintf("Learned from your history (%dx confirmed)", learned.Confidence),
		}
	}

	if match, ok := MatchMerchant(merchantName, upiID); ok && match.Confidence >= 0.80 {
		return Result{
			Category:     match.Category,
			Source:       SourceMerchant,
			Confidence:   ConfidenceHigh,
			Alternatives: Alternatives(match.Category),
			Reasoning:    match.Reasoning,
		}
	}

	if category := MatchKeywords(description); category != "" {
		return Result{
			Category:     category,
			Source:       SourceKeyword,
			Confidence:   ConfidenceHigh,
			Alternatives: Alternatives(category),
			Reasoning:    "Matched category keywords",
		}
	}

	ambiguous := IsAmbiguous(description)
	if e.oracle != nil && ambiguous {
		return e.suggestFromOracle(ctx, description, amount)
	}

	// Unmatched but descriptive strings import as Other without bothering
	// the user; only ambiguous ones ask for clarification.
	return Result{
		Category:           CategoryOther,
		Source:             SourceFallback,
		Confidence:         ConfidenceLow,
		Reasoning:          "No confident match found",
		NeedsClarification: ambiguous,
	}
}

func (e *Engine) suggestFromOracle(ctx context.Context, description string, amount decimal.Decimal) Result {
	c, err := e.oracle.Classify(ctx, description, amount)
	if err != nil {
		log.Printf("[categorize] classifier failed for %q: %v", description, err)
		reasoning := "Classifier unavailable - please categorize manually"
		if oerr, ok := err.(*OracleError); ok && oerr.RateLimited {
			reasoning = "Classifier rate limit reached - please categorize manually"
		}
		// Oracle failure falls back to the keyword matcher, then Other.
		category := MatchKeywords(description)
		if category == "" {
			category = CategoryOther
		}
		return Result{
			Category:           category,
			Source:             SourceFallback,
			Confidence:         ConfidenceLow,
			Reasoning:          reasoning,
			NeedsClarification: true,
		}
	}

	needsClarification := c.Confidence == ConfidenceLow ||
		(c.Confidence == ConfidenceMedium && IsAmbiguous(description)) ||
		c.Category == CategoryOther

	return Result{
		Category:           c.Category,
		Source:             SourceOracle,
		Confidence:         c.Confidence,
		Alternatives:       c.Alternatives,
		Reasoning:          c.Reasoning,
		NeedsClarification: needsClarification,
	}
}

// ConfirmCategory records the user's category choice for a merchant.
// Confirming the same category again increments the mapping's confidence;
// choosing a different category resets it to 1.
func (e *Engine) ConfirmCategory(ctx context.Context, userID, description, category string) (*Confirmation, error) {
	merchantName := NormalizeMerchant(description)
	if merchantName == "" {
		return nil, fmt.Errorf("could not normalize merchant name from description")
	}

	canonical, ok := IsValidCategory(category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	now := time.Now().UTC()
	existing, err := e.store.GetMerchantMapping(ctx, userID, merchantName)
	if err != nil {
		return nil, fmt.Errorf("load merchant mapping: %w", err)
	}

	var mapping store.MerchantMapping
	action := "created"
	if existing != nil {
		mapping = *existing
		action = "updated"
		if mapping.Category != canonical {
			mapping.Category = canonical
			mapping.Confidence = 1
		} else {
			mapping.Confidence++
		}
		mapping.UpdatedAt = now
	} else {
		mapping = store.MerchantMapping{
			UserID:       userID,
			MerchantName: merchantName,
			Category:     canonical,
			Confidence:   1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := e.store.UpsertMerchantMapping(ctx, &mapping); err != nil {
		return nil, fmt.Errorf("save merchant mapping: %w", err)
	}
	return &Confirmation{Action: action, Mapping: mapping}, nil
}

func (e *Engine) learnedMapping(ctx context.Context, userID, description string) *store.MerchantMapping {
	if userID == "" || e.store == nil {
		return nil
	}
	merchantName := NormalizeMerchant(description)
	if merchantName == "" {
		return nil
	}
	mapping, err := e.store.GetMerchantMapping(ctx, userID, merchantName)
	if err != nil {
		log.Printf("[categorize] learned mapping lookup failed: %v", err)
		return nil
	}
	return mapping
}

var (
	merchantPrefixes = []string{"upi-", "pos-", "neft-", "imps-", "atm-", "online-", "card-"}
	digitRun         = regexp.MustCompile(`\d{6,}`)
	nonAlnum         = regexp.MustCompile(`[^a-z0-9\s]`)
)

// NormalizeMerchant reduces a transaction description to a stable merchant
// key: lowercase, known transaction-type prefixes and long digit runs
// removed, punctuation collapsed to spaces, truncated to 100 characters.
// Normalizing an already-normalized name is a no-op.
func NormalizeMerchant(description string) string {
	n := strings.ToLower(description)

	for _, prefix := range merchantPrefixes {
		n = strings.TrimPrefix(n, prefix)
	}

	n = digitRun.ReplaceAllString(n, "")
	n = nonAlnum.ReplaceAllString(n, " ")
	n = strings.Join(strings.Fields(n), " ")

	if len(n) > 100 {
		n = strings.TrimSpace(n[:100])
	}
	return n
}
