// Package describe extracts structured fields from raw bank transaction
// descriptions: UPI IDs, payment methods, transaction references and
// merchant names as they appear in Indian bank statement narration.
package describe

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Details holds the structured fields recovered from a single transaction
// description. Fields the parser could not recover are empty strings.
type Details struct {
	UPIID          string `json:"upi_id,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	MerchantName   string `json:"merchant_name,omitempty"`
	Raw            string `json:"raw_description"`
}

// upiMerchants maps UPI name parts and bank handles to display names.
// Order matters: earlier entries win when a name part contains several keys.
var upiMerchants = []struct {
	key      string
	merchant string
}{
	// Payment apps
	{"paytm", "Paytm"},
	{"ptybl", "Paytm"},
	{"ptyes", "Paytm"},
	{"phonepe", "PhonePe"},
	{"ybl", "PhonePe"},
	{"googlepay", "Google Pay"},
	{"gpay", "Google Pay"},
	{"okaxis", "Google Pay"},
	{"okhdfcbank", "Google Pay"},
	{"okicici", "Google Pay"},
	{"amazonpay", "Amazon Pay"},
	{"apl", "Amazon Pay"},
	{"bhim", "BHIM UPI"},

	// Food delivery
	{"swiggy", "Swiggy"},
	{"zomato", "Zomato"},

	// E-commerce
	{"flipkart", "Flipkart"},
	{"amazon", "Amazon"},
	{"icici", "Amazon"},
	{"myntra", "Myntra"},
	{"ajio", "Ajio"},

	// Utilities
	{"mobikwik", "MobiKwik"},
	{"freecharge", "Freecharge"},
	{"airtel", "Airtel"},
	{"jio", "Jio"},
	{"vodafone", "Vodafone"},

	// Transport
	{"uber", "Uber"},
	{"ola", "Ola"},
	{"rapido", "Rapido"},

	// Others
	{"irctc", "IRCTC"},
	{"bookmyshow", "BookMyShow"},
}

// bankHandles are UPI handles that identify the payment rails rather than
// the merchant, so they never match against the name part of a UPI ID.
var bankHandles = map[string]bool{
	"ybl":        true,
	"paytm":      true,
	"ptybl":      true,
	"ptyes":      true,
	"okaxis":     true,
	"okhdfcbank": true,
	"okicici":    true,
	"icici":      true,
	"apl":        true,
}

var (
	// UPI ID with a slash separator and a negative numeric name part,
	// e.g. "e/YESB/-29411985@ptybl".
	upiSlashNegative = regexp.MustCompile(`/(-\d+@[a-zA-Z]+)`)
	// "UPI-xxx@bank-..." prefix format; captures only the handle itself.
	upiPrefixed = regexp.MustCompile(`(?i)UPI-([a-zA-Z0-9._-]+@[a-zA-Z]+)(?:-|$)`)
	// Generic name@handle token bounded by separators.
	upiGeneric = regexp.MustCompile(`(?:[/@\s]|^)([a-zA-Z0-9._-]+@[a-zA-Z]+)(?:[/\s-]|$)`)

	chequeToken  = regexp.MustCompile(`\bCHQ\b|\bCHEQUE\b|\bCHECK\b`)
	cashDeposit  = regexp.MustCompile(`\bCASH\s+DEP(OSIT)?\b`)
	cardKeywords = []string{"POS", "DEBIT CARD", "CREDIT CARD", "CARD PURCHASE"}

	upiRef         = regexp.MustCompile(`(?i)UPI[/-](\d{8,})[/-]`)
	labelledRef    = regexp.MustCompile(`(?i)REF(?:ERENCE)?[:\s]*([A-Z0-9]+)`)
	txnIDRef       = regexp.MustCompile(`(?i)(?:TRANSACTION|TXN)\s*(?:ID)?[:\s]+([A-Z0-9]+)`)
	rSeriesRef     = regexp.MustCompile(`[/-](R\d{7,})(?:[/-]|$)`)
	longNumericRef = regexp.MustCompile(`\b(\d{10,})\b`)

	toFromName = regexp.MustCompile(`(?i)(?:TO|FROM)\s+([A-Za-z\s]+?)(?:\s+(?:REF|REFERENCE|TXN)|$)`)
	capWords   = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)\b`)

	bankingNoise = regexp.MustCompile(`(?i)\b(PAYMENT|TRANSFER|UPI|NEFT|IMPS|RTGS|DEBIT|CREDIT|TRANSACTION|TXN|DR|CR|A/C|ACCOUNT)\b`)
	allDigits    = regexp.MustCompile(`^\d+$`)
)

// Parse extracts all structured fields from a transaction description.
func Parse(description string) Details {
	if description == "" {
		return Details{}
	}

	d := Details{Raw: description}
	d.UPIID = ExtractUPIID(description)
	d.PaymentMethod = ExtractPaymentMethod(description)
	d.TransactionRef = ExtractTransactionRef(description)
	d.MerchantName = ExtractMerchantName(description, d.UPIID)
	return d
}

// ParseBatch parses a slice of descriptions, preserving order.
func ParseBatch(descriptions []string) []Details {
	out := make([]Details, len(descriptions))
	for i, desc := range descriptions {
		out[i] = Parse(desc)
	}
	return out
}

// ExtractUPIID finds the UPI ID embedded in a description, e.g.
// "e/YESB/-29411985@ptybl" yields "-29411985@ptybl" and
// "UPI-merchant@ybl-123456" yields "merchant@ybl". Returns "" when the
// description carries no UPI ID.
func ExtractUPIID(text string) string {
	if text == "" {
		return ""
	}

	if m := upiSlashNegative.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := upiPrefixed.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	// With multiple @ tokens the last one is most likely the real ID.
	if ms := upiGeneric.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		return ms[len(ms)-1][1]
	}
	return ""
}

// ExtractPaymentMethod classifies the payment rail mentioned in the
// description: UPI, RTGS, IMPS, NEFT, ATM, Cheque, Cash or Card.
// More specific indicators are checked first.
func ExtractPaymentMethod(text string) string {
	if text == "" {
		return ""
	}
	upper := strings.ToUpper(text)

	switch {
	case strings.Contains(upper, "UPI") || strings.Contains(text, "@"):
		return "UPI"
	case strings.Contains(upper, "RTGS"):
		return "RTGS"
	case strings.Contains(upper, "IMPS"):
		return "IMPS"
	case strings.Contains(upper, "NEFT"):
		return "NEFT"
	case strings.Contains(upper, "ATM") || strings.Contains(upper, "CASH WITHDRAWAL"):
		return "ATM"
	case chequeToken.MatchString(upper):
		return "Cheque"
	case cashDeposit.MatchString(upper):
		return "Cash"
	}
	for _, kw := range cardKeywords {
		if strings.Contains(upper, kw) {
			return "Card"
		}
	}
	return ""
}

// ExtractTransactionRef pulls the reference number out of a description,
// trying the bank-specific formats before falling back to any long
// numeric run.
func ExtractTransactionRef(text string) string {
	if text == "" {
		return ""
	}

	if m := upiRef.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := labelledRef.FindStringSubmatch(text); m != nil {
		ref := m[1]
		// Guard against capturing the literal "REF" from "REFERENCE".
		if !strings.EqualFold(ref, "REF") && len(ref) > 3 {
			return ref
		}
	}
	if m := txnIDRef.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := rSeriesRef.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := longNumericRef.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ExtractMerchantName recovers a display-worthy merchant name. The UPI ID,
// when known, takes priority through the handle mapping; otherwise the
// function falls back through TO/FROM phrases, slash-separated narration
// segments, the UPI name part, and finally the longest capitalized run.
func ExtractMerchantName(text, upiID string) string {
	if text == "" {
		return ""
	}

	if upiID != "" {
		if merchant := mapUPIToMerchant(upiID); merchant != "" {
			return merchant
		}
	}

	if m := toFromName.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		if len(name) > 2 {
			if cleaned := cleanMerchantName(name); cleaned != "" {
				return cleaned
			}
		}
	}

	// UPI narration often keeps the payee as the last slash segment,
	// e.g. "UPI/297518249928/DR/Hai".
	if strings.Contains(text, "/") {
		segments := strings.Split(text, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			segment := strings.TrimSpace(segments[i])
			if segment == "" || isBankingCode(segment) {
				continue
			}
			if allDigits.MatchString(segment) || strings.Contains(segment, "@") {
				continue
			}
			if cleaned := cleanMerchantName(segment); len(cleaned) > 1 {
				return cleaned
			}
		}
	}

	if upiID != "" && strings.Contains(upiID, "@") {
		namePart := strings.SplitN(upiID, "@", 2)[0]
		if !allDigits.MatchString(namePart) && !strings.HasPrefix(namePart, "-") {
			namePart = strings.ReplaceAll(namePart, ".", " ")
			namePart = strings.ReplaceAll(namePart, "_", " ")
			return cleanMerchantName(namePart)
		}
	}

	if ms := capWords.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		longest := ""
		for _, m := range ms {
			if len(m[1]) > len(longest) {
				longest = m[1]
			}
		}
		if len(longest) > 3 {
			return cleanMerchantName(longest)
		}
	}

	return ""
}

// mapUPIToMerchant resolves a UPI ID to a known merchant. The name part is
// checked first (swiggy@paytm is Swiggy, not Paytm); the handle only wins
// when the name part is numeric or too short to be a merchant name.
func mapUPIToMerchant(upiID string) string {
	if upiID == "" || !strings.Contains(upiID, "@") {
		return ""
	}

	parts := strings.SplitN(upiID, "@", 2)
	namePart := strings.ToLower(parts[0])
	handle := strings.ToLower(parts[1])

	for _, entry := range upiMerchants {
		if strings.Contains(namePart, entry.key) && !bankHandles[entry.key] {
			return entry.merchant
		}
	}

	for _, entry := range upiMerchants {
		if entry.key != handle {
			continue
		}
		bare := strings.ReplaceAll(namePart, "-", "")
		if allDigits.MatchString(bare) || len(namePart) < 6 {
			return entry.merchant
		}
		break
	}

	return ""
}

// cleanMerchantName strips banking keywords, collapses whitespace and
// title-cases the remainder.
func cleanMerchantName(name string) string {
	cleaned := bankingNoise.ReplaceAllString(name, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	caser := cases.Title(language.English)
	return strings.TrimSpace(caser.String(strings.ToLower(cleaned)))
}

func isBankingCode(segment string) bool {
	switch strings.ToUpper(segment) {
	case "DR", "CR", "UPI", "NEFT", "IMPS", "RTGS":
		return true
	}
	return false
}
