// Package parse turns raw statement bytes (CSV, Excel, PDF) into normalized
// transactions. Column names vary wildly between banks, so every format
// resolves semantic fields through the same curated synonym lists.
package parse

import "strings"

// Column synonym lists. These are the de facto compatibility contract with
// real-world bank exports; matching is exact against the lowercased,
// trimmed header cell.
var (
	dateColumns = []string{
		"date", "transaction date", "posting date", "trans date",
		"trans. date", "txn date", "tran date", "value date", "booking date",
	}

	// PDF tables use a couple of extra date header variants not seen in
	// CSV/Excel exports.
	pdfDateColumns = append([]string{"transaction", "posted date"}, dateColumns...)

	descriptionColumns = []string{
		"description", "payee", "merchant", "details", "memo", "narrative",
		"narration", "particulars", "transaction description", "remarks",
		"transaction remarks", "transaction details",
	}

	amountColumns = []string{
		"amount", "debit", "withdrawal", "payment",
		"dr", "debit amt", "debit amount", "withdrawal amt",
		"withdrawal amt.", "withdrawalamt.", "withdrawals",
	}

	creditColumns = []string{
		"credit", "deposit", "deposits", "depositamt.",
		"cr", "credit amt", "credit amount", "deposit amt", "deposit amt.",
	}
)

// headerKeywords marks a row as a plausible header when scanning Excel
// sheets and PDF tables that carry logo/account noise above the data.
var headerKeywords = []string{
	"date", "description", "amount", "transaction", "payee", "merchant",
	"debit", "credit", "balance", "narration", "withdrawal", "deposit",
}

// normalizeHeader lowercases and trims a header cell.
func normalizeHeader(cell string) string {
	return strings.ToLower(strings.TrimSpace(cell))
}

// findColumn returns the index of the first header cell whose normalized
// text matches one of the candidate names, or -1.
func findColumn(headers []string, names []string) int {
	for i, h := range headers {
		norm := normalizeHeader(h)
		for _, name := range names {
			if norm == name {
				return i
			}
		}
	}
	return -1
}

// containsHeaderKeyword reports whether the joined row text mentions any
// known header keyword.
func containsHeaderKeyword(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, " "))
	for _, kw := range headerKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// columnSet holds resolved column indices for one table or sheet.
// credit is -1 when the statement has a single amount column.
type columnSet struct {
	date        int
	description int
	amount      int
	credit      int
}

// resolveColumns maps a header row to semantic field indices. The credit
// column is optional; date/description/amount are required.
func resolveColumns(headers []string, dateNames []string) (columnSet, bool) {
	cs := columnSet{
		date:        findColumn(headers, dateNames),
		description: findColumn(headers, descriptionColumns),
		amount:      findColumn(headers, amountColumns),
		credit:      findColumn(headers, creditColumns),
	}
	if cs.credit == cs.amount {
		// A lone "amount" header must not double as the credit column.
		cs.credit = -1
	}
	ok := cs.date >= 0 && cs.description >= 0 && cs.amount >= 0
	return cs, ok
}

// maxIndex returns the highest column index the set references.
func (cs columnSet) maxIndex() int {
	max := cs.date
	if cs.description > max {
		max = cs.description
	}
	if cs.amount > max {
		max = cs.amount
	}
	if cs.credit > max {
		max = cs.credit
	}
	return max
}
