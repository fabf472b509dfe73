package template

import (
	"regexp"
	"strings"
	"time"

	"github.com/expenseflow/backend/internal/parse"
	"github.com/expenseflow/backend/internal/statement"
)

const (
	dateSliceWidth   = 15 // chars reserved for the date column
	amountSliceWidth = 12 // chars reserved for each amount column
	minReconstructLen = 15
	maxReconstructDesc = 50
)

var (
	monthDateToken   = regexp.MustCompile(`\d{1,2}\s+[A-Za-z]{3}\s+\d{4}`)
	numericDateToken = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
	trailingAmounts  = regexp.MustCompile(`[\d,]+\.\d{2}`)

	// Leading date token shapes tried by the reconstruction strategy.
	reconstructDates = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}\s+[A-Za-z]{3}\s+\d{4}`),
		regexp.MustCompile(`\d{1,2}-[A-Za-z]{3}-\d{4}`),
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`),
	}
)

// positionalStrategy recovers columns from the header line's character
// offsets in layout-preserved text, then slices every following line at
// those offsets. Survives small layout rotations that break the regex.
type positionalStrategy struct{}

func (s *positionalStrategy) Name() string { return "positional" }

func (s *positionalStrategy) Extract(doc *parse.PDFDocument, tpl *BankTemplate) []statement.Transaction {
	var transactions []statement.Transaction

	for _, text := range doc.PageTexts() {
		lines := strings.Split(text, "\n")

		headerIdx := -1
		var headerLine string
		for idx, line := range lines {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "date") &&
				strings.Contains(lower, "particulars") &&
				strings.Contains(lower, "withdrawal") {
				headerLine = line
				headerIdx = idx
				break
			}
		}
		if headerIdx == -1 {
			continue
		}

		headerLower := strings.ToLower(headerLine)
		datePos := strings.Index(headerLower, "date")
		withdrawalPos := strings.Index(headerLower, "withdrawal")
		depositPos := strings.Index(headerLower, "deposit")
		if datePos == -1 || withdrawalPos == -1 {
			continue
		}

		for _, line := range lines[headerIdx+1:] {
			if strings.TrimSpace(line) == "" || tpl.shouldSkip(line) {
				continue
			}

			dateText := sliceAt(line, datePos, dateSliceWidth)
			token := monthDateToken.FindString(dateText)
			if token == "" {
				token = numericDateToken.FindString(dateText)
			}
			if token == "" {
				continue
			}
			date, ok := parse.FlexibleDate(token)
			if !ok {
				continue
			}

			withdrawalText := sliceAt(line, withdrawalPos, amountSliceWidth)
			depositText := ""
			if depositPos != -1 {
				depositText = sliceAt(line, depositPos, amountSliceWidth)
			}

			description := ""
			if withdrawalPos > datePos+dateSliceWidth && len(line) > datePos+dateSliceWidth {
				end := withdrawalPos
				if end > len(line) {
					end = len(line)
				}
				description = strings.TrimSpace(line[datePos+dateSliceWidth : end])
			}
			if description == "" {
				description = "Transaction"
			}

			amount, polarity, keep := parse.Net(withdrawalText, depositText)
			if !keep {
				continue
			}

			transactions = append(transactions, statement.Transaction{
				Date:        date,
				Description: description,
				Amount:      amount,
				Type:        polarity,
			})
		}
	}

	return transactions
}

// sliceAt returns a trimmed fixed-width slice of line starting at pos.
func sliceAt(line string, pos, width int) string {
	if pos < 0 || pos >= len(line) {
		return ""
	}
	end := pos + width
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[pos:end])
}

// reconstructStrategy is the most permissive fallback: any line long
// enough that starts with a recognizable date token is treated as a
// transaction, with the trailing decimal amounts read as withdrawal,
// deposit and balance.
type reconstructStrategy struct{}

func (s *reconstructStrategy) Name() string { return "reconstruction" }

func (s *reconstructStrategy) Extract(doc *parse.PDFDocument, tpl *BankTemplate) []statement.Transaction {
	var transactions []statement.Transaction

	for _, text := range doc.PageTexts() {
		for _, line := range strings.Split(text, "\n") {
			if len(strings.TrimSpace(line)) < minReconstructLen {
				continue
			}
			if tpl.shouldSkip(line) {
				continue
			}
			if strings.Contains(line, "Date") && strings.Contains(line, "Particulars") {
				continue
			}

			date, rest, ok := leadingDate(line)
			if !ok {
				continue
			}

			amounts := trailingAmounts.FindAllString(rest, -1)
			if len(amounts) < 2 {
				continue
			}

			// With three or more amounts the tail is withdrawal, deposit,
			// balance; with two it is withdrawal, deposit.
			var withdrawalStr, depositStr string
			if len(amounts) >= 3 {
				withdrawalStr = amounts[len(amounts)-3]
				depositStr = amounts[len(amounts)-2]
			} else {
				withdrawalStr = amounts[len(amounts)-2]
				depositStr = amounts[len(amounts)-1]
			}

			description := ""
			if pos := strings.Index(rest, amounts[0]); pos > 0 {
				description = strings.TrimSpace(rest[:pos])
			}
			if len(description) > maxReconstructDesc {
				description = description[:maxReconstructDesc] + "..."
			}
			if description == "" {
				description = "Transaction"
			}

			amount, polarity, keep := parse.Net(withdrawalStr, depositStr)
			if !keep {
				continue
			}

			transactions = append(transactions, statement.Transaction{
				Date:        date,
				Description: description,
				Amount:      amount,
				Type:        polarity,
			})
		}
	}

	return transactions
}

// leadingDate finds the first date token on the line and returns the
// parsed date along with the remainder of the line after it.
func leadingDate(line string) (time.Time, string, bool) {
	for _, cand := range reconstructDates {
		loc := cand.FindStringIndex(line)
		if loc == nil {
			continue
		}
		token := line[loc[0]:loc[1]]
		t, parsed := parse.FlexibleDate(token)
		if !parsed {
			continue
		}
		return t, strings.TrimSpace(line[loc[1]:]), true
	}
	return time.Time{}, "", false
}
