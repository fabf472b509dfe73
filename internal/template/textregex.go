package template

import (
	"strings"

	"github.com/expenseflow/backend/internal/parse"
	"github.com/expenseflow/backend/internal/statement"
)

// regexStrategy applies the template's regex (with named capture groups
// date/description/debit/credit) to each page's text. Fast and precise
// whenever the bank's layout matches the recorded pattern exactly.
type regexStrategy struct{}

func (s *regexStrategy) Name() string { return "text_regex" }

func (s *regexStrategy) Extract(doc *parse.PDFDocument, tpl *BankTemplate) []statement.Transaction {
	if tpl.re == nil {
		return nil
	}

	var transactions []statement.Transaction
	for _, text := range selectPages(doc, tpl) {
		for _, match := range tpl.re.FindAllStringSubmatch(text, -1) {
			tx, ok := parseMatch(match, tpl)
			if !ok {
				continue
			}
			transactions = append(transactions, tx)
		}
	}
	return transactions
}

// selectPages honors the template's page hint: some banks keep all
// transactions on one known page.
func selectPages(doc *parse.PDFDocument, tpl *BankTemplate) []string {
	texts := doc.PageTexts()
	if tpl.PageHint > 0 && tpl.PageHint <= len(texts) {
		return texts[tpl.PageHint-1 : tpl.PageHint]
	}
	return texts
}

// parseMatch converts one regex match into a transaction using the named
// groups, the template's date format and the shared debit/credit algebra.
func parseMatch(match []string, tpl *BankTemplate) (statement.Transaction, bool) {
	groups := namedGroups(tpl, match)

	dateStr := strings.TrimSpace(groups["date"])
	description := strings.TrimSpace(groups["description"])
	if dateStr == "" || description == "" {
		return statement.Transaction{}, false
	}
	if tpl.shouldSkip(description) {
		return statement.Transaction{}, false
	}

	date, ok := parseTemplateDate(dateStr, tpl.DateFormat)
	if !ok {
		return statement.Transaction{}, false
	}

	amount, polarity, keep := parse.Net(groups["debit"], groups["credit"])
	if !keep {
		return statement.Transaction{}, false
	}

	return statement.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        polarity,
	}, true
}

func namedGroups(tpl *BankTemplate, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range tpl.re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}
