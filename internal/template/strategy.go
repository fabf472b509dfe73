package template

import (
	"log"
	"time"

	"github.com/expenseflow/backend/internal/parse"
	"github.com/expenseflow/backend/internal/statement"
)

// Strategy is one way of extracting transactions from a decoded PDF under
// a bank template. Strategies never fail hard: a layout mismatch simply
// yields few or no transactions and the cascade moves on.
type Strategy interface {
	Name() string
	Extract(doc *parse.PDFDocument, tpl *BankTemplate) []statement.Transaction
}

// cascade runs strategies in order and accepts the first result whose
// transaction count exceeds the threshold. Real statements rotate layout
// between periods, so no single strategy is robust across variants; the
// chain degrades from precise to permissive. All under-yielding means an
// empty result, which the caller surfaces as a format error.
func cascade(doc *parse.PDFDocument, tpl *BankTemplate, threshold int, strategies ...Strategy) []statement.Transaction {
	for _, s := range strategies {
		txs := s.Extract(doc, tpl)
		if len(txs) > threshold {
			log.Printf("[template] %s: strategy %s accepted with %d transactions", tpl.BankName, s.Name(), len(txs))
			return txs
		}
		log.Printf("[template] %s: strategy %s yielded %d transactions, trying next", tpl.BankName, s.Name(), len(txs))
	}
	return nil
}

// Extract routes a matched template to its extraction method.
// The table method (and any unknown method) delegates to the generic table
// parser: the template's column hints are informational only.
func Extract(doc *parse.PDFDocument, tpl *BankTemplate, c *Catalog) ([]statement.Transaction, error) {
	switch tpl.Method {
	case MethodTextRegex:
		txs := (&regexStrategy{}).Extract(doc, tpl)
		if len(txs) == 0 {
			return nil, statement.NewError(statement.ErrInvalidFileFormat,
				"no transactions matched the %s statement pattern", tpl.BankName)
		}
		return txs, nil

	case MethodHybrid:
		txs := cascade(doc, tpl, c.AcceptThreshold(),
			&regexStrategy{},
			&positionalStrategy{},
			&reconstructStrategy{},
		)
		if len(txs) == 0 {
			return nil, statement.NewError(statement.ErrInvalidFileFormat,
				"all extraction strategies under-yielded for %s statement", tpl.BankName)
		}
		return txs, nil

	default:
		return parse.ParseDocumentTables(doc)
	}
}

// templateDateLayouts maps the declarative date formats used in the
// catalog to Go time layouts.
var templateDateLayouts = map[string]string{
	"DD/MM/YY":    "02/01/06",
	"DD-MM-YY":    "02-01-06",
	"DD/MM/YYYY":  "02/01/2006",
	"DD-MM-YYYY":  "02-01-2006",
	"DD-MMM-YYYY": "02-Jan-2006",
	"DD-MMM-YY":   "02-Jan-06",
	"DD MMM YYYY": "2 Jan 2006",
	"D MMM YYYY":  "2 Jan 2006",
	"D/MM/YYYY":   "02/01/2006",
}

// parseTemplateDate parses a date using the template's declared format,
// falling back to generic multi-format parsing if the declared layout
// fails (layouts drift between statement periods).
func parseTemplateDate(raw, declaredFormat string) (time.Time, bool) {
	if layout, ok := templateDateLayouts[declaredFormat]; ok {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.Year() < 100 {
				t = t.AddDate(2000, 0, 0)
			}
			return t, true
		}
	}
	return parse.FlexibleDate(raw)
}
