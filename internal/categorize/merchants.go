package categorize

import (
	"fmt"
	"strings"
)

// merchantEntry describes a known merchant and how confidently its
// transactions map to a category.
type merchantEntry struct {
	key        string
	category   string
	confidence float64
	kind       string
}

// merchantDatabase is the curated Indian merchant list. Order matters for
// partial matches: earlier entries win.
var merchantDatabase = []merchantEntry{
	// Food delivery and quick commerce
	{"swiggy", CategoryGroceries, 0.95, "Food Delivery"},
	{"zomato", CategoryGroceries, 0.95, "Food Delivery"},
	{"dunzo", CategoryGroceries, 0.90, "Quick Commerce"},
	{"zepto", CategoryGroceries, 0.95, "Quick Commerce"},
	{"blinkit", CategoryGroceries, 0.95, "Quick Commerce"},
	{"instamart", CategoryGroceries, 0.95, "Quick Commerce"},

	// E-commerce
	{"amazon", CategoryShopping, 0.85, "E-commerce"},
	{"flipkart", CategoryShopping, 0.85, "E-commerce"},
	{"myntra", CategoryShopping, 0.90, "Fashion"},
	{"ajio", CategoryShopping, 0.90, "Fashion"},
	{"nykaa", CategoryShopping, 0.90, "Beauty"},

	// Transport
	{"uber", CategoryTransport, 0.95, "Ride Hailing"},
	{"ola", CategoryTransport, 0.95, "Ride Hailing"},
	{"rapido", CategoryTransport, 0.95, "Ride Hailing"},
	{"irctc", CategoryTransport, 0.95, "Rail Travel"},
	{"makemytrip", CategoryTransport, 0.90, "Travel Booking"},
	{"goibibo", CategoryTransport, 0.90, "Travel Booking"},
	{"petrolpump", CategoryTransport, 0.95, "Fuel"},
	{"petrol", CategoryTransport, 0.90, "Fuel"},
	{"iocl", CategoryTransport, 0.95, "Fuel"},
	{"bpcl", CategoryTransport, 0.95, "Fuel"},
	{"hpcl", CategoryTransport, 0.95, "Fuel"},
	{"indianoil", CategoryTransport, 0.95, "Fuel"},
	{"bharatpetroleum", CategoryTransport, 0.95, "Fuel"},
	{"hindustanpetroleum", CategoryTransport, 0.95, "Fuel"},
	{"fastag", CategoryTransport, 0.95, "Toll"},
	{"paytmfastag", CategoryTransport, 0.95, "Toll"},

	// Entertainment
	{"bookmyshow", CategoryEntertainment, 0.95, "Movies/Events"},
	{"netflix", CategoryEntertainment, 0.95, "Streaming"},
	{"spotify", CategoryEntertainment, 0.95, "Music Streaming"},
	{"hotstar", CategoryEntertainment, 0.95, "Streaming"},
	{"primevideo", CategoryEntertainment, 0.95, "Streaming"},

	// Bills and utilities
	{"airtel", CategoryBills, 0.95, "Telecom"},
	{"jio", CategoryBills, 0.95, "Telecom"},
	{"vodafone", CategoryBills, 0.95, "Telecom"},
	{"bescom", CategoryBills, 0.95, "Electricity"},
	{"bwssb", CategoryBills, 0.95, "Water"},

	// Healthcare
	{"apollo", CategoryHealthcare, 0.95, "Pharmacy"},
	{"medplus", CategoryHealthcare, 0.95, "Pharmacy"},
	{"1mg", CategoryHealthcare, 0.95, "Pharmacy"},
	{"pharmeasy", CategoryHealthcare, 0.95, "Pharmacy"},

	// Payment apps carry no category signal on their own.
	{"paytm", CategoryOther, 0.50, "Payment Gateway"},
	{"phonepe", CategoryOther, 0.50, "Payment Gateway"},
	{"googlepay", CategoryOther, 0.50, "Payment Gateway"},
}

// MerchantMatch is a merchant-database hit.
type MerchantMatch struct {
	Category   string
	Confidence float64
	Reasoning  string
}

// MatchMerchant looks up a merchant name and UPI ID against the known
// merchant database. Exact name matches score full confidence; partial
// name and UPI-handle matches score slightly lower.
func MatchMerchant(merchantName, upiID string) (MerchantMatch, bool) {
	if merchantName != "" {
		key := strings.ReplaceAll(strings.ToLower(merchantName), " ", "")

		for _, entry := range merchantDatabase {
			if entry.key == key {
				return MerchantMatch{
					Category:   entry.category,
					Confidence: entry.confidence,
					Reasoning:  fmt.Sprintf("Known merchant: %s (%s)", merchantName, entry.kind),
				}, true
			}
		}
		for _, entry := range merchantDatabase {
			if strings.Contains(key, entry.key) || strings.Contains(entry.key, key) {
				return MerchantMatch{
					Category:   entry.category,
					Confidence: entry.confidence - 0.05,
					Reasoning:  fmt.Sprintf("Matched merchant pattern: %s → %s (%s)", merchantName, entry.key, entry.kind),
				}, true
			}
		}
	}

	if upiID != "" {
		upiName := strings.ToLower(strings.SplitN(upiID, "@", 2)[0])
		for _, entry := range merchantDatabase {
			if strings.Contains(upiName, entry.key) {
				return MerchantMatch{
					Category:   entry.category,
					Confidence: entry.confidence - 0.05,
					Reasoning:  fmt.Sprintf("UPI merchant match: %s → %s (%s)", upiID, entry.key, entry.kind),
				}, true
			}
		}
	}

	return MerchantMatch{}, false
}
