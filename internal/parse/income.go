package parse

import (
	"regexp"
	"strings"
)

// incomeKeywords flag descriptions as credits even when the amount columns
// say otherwise. Many bank exports encode polarity only in the narration
// text, so every parser applies this fallback after column math.
var incomeKeywords = []string{
	// Cash deposits
	"cashdeposit", "cash deposit", "cash dep", "cdm deposit", "atm deposit",

	// Salary and wages
	"salary", "wages", "payroll", "income", "stipend", "bonus", "commission",

	// Bank transfers that are usually inbound
	"neft cr", "imps cr", "rtgs cr", "upi cr",
	"tpt",
	"fund transfer cr", "transfer from", "received from",

	// Refunds
	"refund", "cashback", "cash back", "reversal", "credit reversal",
	"chargeback", "refunded", "return credit",

	// Interest and dividends
	"interest credit", "int credit", "interest paid", "dividend",
	"interest on", "int on fd", "int on rd",

	// Reimbursements
	"reimbursement", "reimb", "expense claim",

	// Other credits
	"credit", "cr-", "-cr", "credited", "deposit",
	"maturity proceeds", "fd maturity", "rd maturity",
	"insurance claim", "settlement",
}

var incomePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bCASHDEPOSIT\b`),
	regexp.MustCompile(`(?i)\bTPT[-\s]`),
	regexp.MustCompile(`(?i)\bNEFT[-/]CR\b`),
	regexp.MustCompile(`(?i)\bIMPS[-/]CR\b`),
	regexp.MustCompile(`(?i)\bRTGS[-/]CR\b`),
	regexp.MustCompile(`(?i)\bUPI[-/]CR\b`),
	regexp.MustCompile(`(?i)\bSALARY\b`),
	regexp.MustCompile(`(?i)\bREFUND\b`),
	regexp.MustCompile(`(?i)\bCASHBACK\b`),
	regexp.MustCompile(`(?i)\bINTEREST\s*CREDIT`),
	regexp.MustCompile(`(?i)\bDIVIDEND\b`),
	regexp.MustCompile(`(?i)\bMATURITY\b`),
	regexp.MustCompile(`(?i)/CR\b`),
	regexp.MustCompile(`(?i)\bCR\s*$`),
}

// isIncomeDescription reports whether the narration text indicates an
// inbound transaction. Precise regex patterns are checked before the
// keyword list; generic keywords carry exclusion contexts ("credit card"
// is an expense, "deposit to" may be a payment).
func isIncomeDescription(description string) bool {
	if description == "" {
		return false
	}

	for _, p := range incomePatterns {
		if p.MatchString(description) {
			return true
		}
	}

	lower := strings.ToLower(description)
	for _, kw := range incomeKeywords {
		switch kw {
		case "credit":
			if strings.Contains(lower, "credit card") || strings.Contains(lower, "cc ") {
				continue
			}
			if strings.Contains(lower, "debit") {
				continue
			}
		case "deposit":
			if strings.Contains(lower, "deposit to") {
				continue
			}
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
