package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchKeywords(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"ride hailing", "UBER TRIP 1234", CategoryTransport},
		{"fuel", "HP Petrol Pump Koramangala", CategoryTransport},
		{"food delivery", "Swiggy Order #98765", CategoryEntertainment},
		{"streaming", "NETFLIX.COM subscription", CategoryEntertainment},
		{"brand token inside narration", "POS-MYNTRA DESIGNS", CategoryShopping},
		{"reliance is shopping", "RELIANCE RETAIL LTD", CategoryShopping},
		{"groceries", "DMART AVENUE SUPERMARTS", CategoryGroceries},
		{"telecom", "JIO PREPAID RECHARGE", CategoryBills},
		{"pharmacy", "Apollo Pharmacy", CategoryHealthcare},
		{"rent", "Monthly rent May", CategoryRent},
		{"no match", "XYZW", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchKeywords(tt.desc))
		})
	}
}

func TestMatchKeywordsFirstCategoryWins(t *testing.T) {
	// "uber eats" is an Entertainment phrase, but the single word "uber"
	// sits earlier in the Transport list and wins.
	assert.Equal(t, CategoryTransport, MatchKeywords("UBER EATS ORDER"))
}

func TestIsAmbiguous(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want bool
	}{
		{"too short", "ab", true},
		{"person name", "Ramesh Kumar", true},
		{"single name", "Priya", true},
		{"business word saves it", "Corner Cafe", false},
		{"payment app saves it", "Paytm Wallet", false},
		{"generic term few words", "online payment", true},
		{"generic term three words", "cash transfer self", true},
		{"long descriptive", "Swiggy order delivered to home address", false},
		{"lowercase words", "grocery run", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAmbiguous(tt.desc))
		})
	}
}

func TestMatchMerchant(t *testing.T) {
	m, ok := MatchMerchant("Swiggy", "")
	assert.True(t, ok)
	assert.Equal(t, CategoryGroceries, m.Category)
	assert.InDelta(t, 0.95, m.Confidence, 0.001)

	// Partial name match loses a little confidence.
	m, ok = MatchMerchant("Swiggy Instamart Order", "")
	assert.True(t, ok)
	assert.Equal(t, CategoryGroceries, m.Category)
	assert.InDelta(t, 0.90, m.Confidence, 0.001)

	// UPI name part carries the signal when the display name does not.
	m, ok = MatchMerchant("", "zomato.orders@okhdfcbank")
	assert.True(t, ok)
	assert.Equal(t, CategoryGroceries, m.Category)

	_, ok = MatchMerchant("Ramesh Kumar", "")
	assert.False(t, ok)
}

func TestIsValidCategory(t *testing.T) {
	got, ok := IsValidCategory("transport")
	assert.True(t, ok)
	assert.Equal(t, CategoryTransport, got)

	_, ok = IsValidCategory("Food")
	assert.False(t, ok)
}
