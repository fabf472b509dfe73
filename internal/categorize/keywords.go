// Package categorize assigns expense categories to transactions using a
// layered strategy: learned per-user mappings, keyword matching, a known
// merchant database, and an external classifier as the last resort.
package categorize

import (
	"regexp"
	"strings"
	"unicode"
)

// Category names produced by the engine.
const (
	CategoryTransport     = "Transport"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryGroceries     = "Groceries"
	CategoryBills         = "Bills"
	CategoryHealthcare    = "Healthcare"
	CategoryRent          = "Rent"
	CategoryIncome        = "Income"
	CategoryOther         = "Other"
)

// categoryKeywords is the canonical keyword table. Order matters: categories
// are checked in sequence and the first match wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryTransport, []string{
		"uber", "lyft", "taxi", "cab", "gas", "fuel", "petrol", "shell",
		"chevron", "bp", "exxon", "transit", "metro", "bus", "train",
		"subway", "parking", "toll", "car", "vehicle", "auto",
		"transportation", "citymapper", "parking meter",
		"ola", "rapido", "railway", "irctc", "railway ticket", "flight", "airline",
		"makemytrip", "goibibo", "iocl", "bpcl", "hpcl", "fastag",
	}},
	{CategoryEntertainment, []string{
		"netflix", "spotify", "hulu", "disney", "hbo", "amazon prime",
		"movie", "cinema", "theater", "theatre", "concert", "game",
		"xbox", "playstation", "nintendo", "steam", "ticket", "show",
		"entertainment", "music", "streaming", "youtube premium",
		"dominos", "pizza", "swiggy", "zomato", "foodpanda", "uber eats",
		"cafe", "restaurant", "dining", "bar", "pub", "club", "multiplex",
		"bookmyshow", "ticketmaster", "hotstar",
	}},
	{CategoryShopping, []string{
		"amazon", "ebay", "shop", "store", "mall", "clothing", "clothes",
		"fashion", "shoes", "electronics", "best buy", "apple store",
		"h&m", "zara", "uniqlo", "nike", "adidas", "online shopping",
		"department store", "retail", "book", "apparel",
		"myntra", "flipkart", "ajio", "unacademy", "decathlon", "sports",
		"westside", "reliance", "pantaloons", "forever 21", "levi", "puma",
		"nykaa",
	}},
	{CategoryGroceries, []string{
		"supermarket", "grocery", "walmart", "target", "costco", "whole foods",
		"trader joe", "safeway", "kroger", "publix", "food", "market",
		"aldi", "lidl", "tesco", "carrefour", "fresh", "produce",
		"dmart", "bigbasket", "blinkit", "zepto", "nature basket", "grofers",
		"haldiram", "chitale", "britannia", "dairy", "milk", "bakery",
		"instamart", "dunzo", "kirana",
	}},
	{CategoryBills, []string{
		"electric", "electricity", "water", "utility", "utilities", "gas bill",
		"internet", "wifi", "phone", "mobile", "verizon", "att", "t-mobile",
		"comcast", "spectrum", "insurance", "bill payment", "utilities payment",
		"jio", "airtel", "vodafone", "idea", "bsnl", "postpaid", "broadband",
		"recharge", "prepaid",
	}},
	{CategoryHealthcare, []string{
		"doctor", "hospital", "clinic", "pharmacy", "cvs", "walgreens",
		"medicine", "medical", "health", "dental", "dentist", "prescription",
		"urgent care", "healthcare", "copay", "medication", "drug store",
		"apollo", "fortis", "manipal", "max", "pharmeasy", "netmeds", "cure fit",
		"medplus", "1mg",
	}},
	{CategoryRent, []string{
		"rent", "lease", "landlord", "property", "housing", "apartment",
		"mortgage", "housing payment", "monthly rent", "hostel",
	}},
}

// alternatives lists categories likely to be confused with the primary one,
// offered alongside suggestions in the clarification flow.
var alternatives = map[string][]string{
	CategoryGroceries:     {CategoryShopping, CategoryOther},
	CategoryShopping:      {CategoryGroceries, CategoryEntertainment, CategoryOther},
	CategoryTransport:     {CategoryBills, CategoryOther},
	CategoryBills:         {CategoryTransport, CategoryRent, CategoryOther},
	CategoryEntertainment: {CategoryShopping, CategoryOther},
	CategoryHealthcare:    {CategoryBills, CategoryOther},
	CategoryRent:          {CategoryBills, CategoryOther},
}

// Alternatives returns alternative categories similar to the primary one.
func Alternatives(category string) []string {
	if alts, ok := alternatives[category]; ok {
		return alts
	}
	return []string{CategoryOther}
}

// ValidCategories returns every category the engine may produce, in
// keyword-table order plus Income and Other.
func ValidCategories() []string {
	out := make([]string, 0, len(categoryKeywords)+2)
	for _, entry := range categoryKeywords {
		out = append(out, entry.category)
	}
	return append(out, CategoryIncome, CategoryOther)
}

// IsValidCategory reports whether name matches a known category,
// case-insensitively. The second return value is the canonical spelling.
func IsValidCategory(name string) (string, bool) {
	for _, cat := range ValidCategories() {
		if strings.EqualFold(name, cat) {
			return cat, true
		}
	}
	return "", false
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func init() {
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if !strings.Contains(kw, " ") {
				wordBoundaryCache[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			}
		}
	}
}

// MatchKeywords returns the first category whose keyword list matches the
// description, or "" when nothing matches. Multi-word phrases match as
// substrings; single words match on word boundaries with a plain substring
// fallback for merchant brand tokens embedded in narration.
func MatchKeywords(description string) string {
	if description == "" {
		return ""
	}
	lower := strings.ToLower(description)

	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(lower, kw) {
					return entry.category
				}
				continue
			}
			if wordBoundaryCache[kw].MatchString(lower) {
				return entry.category
			}
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return ""
}

var (
	businessIndicators = []string{"store", "shop", "mart", "center", "cafe", "restaurant", "hotel", "bank", "atm"}
	paymentIndicators  = []string{"upi", "paytm", "gpay", "phonepe", "amazon", "flipkart", "swiggy", "zomato"}
	genericTerms       = []string{"payment", "transfer", "transaction", "debit", "credit", "cash", "online"}
)

// IsAmbiguous reports whether a description is too vague to categorize
// without outside help: very short strings, one or two capitalized words
// that look like a person's name, or a few words around a generic
// transactional term.
func IsAmbiguous(description string) bool {
	trimmed := strings.TrimSpace(description)
	if len(trimmed) < 3 {
		return true
	}

	words := strings.Fields(trimmed)
	lower := strings.ToLower(description)

	if len(words) <= 2 && allCapitalized(words) {
		for _, ind := range businessIndicators {
			if strings.Contains(lower, ind) {
				return false
			}
		}
		for _, ind := range paymentIndicators {
			if strings.Contains(lower, ind) {
				return false
			}
		}
		// One or two bare capitalized words are presumed a person's name.
		return true
	}

	if len(words) <= 3 {
		for _, term := range genericTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}

	return false
}

func allCapitalized(words []string) bool {
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		if !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}
