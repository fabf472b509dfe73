package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUPIID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"slash negative numeric", "e/YESB/-29411985@ptybl", "-29411985@ptybl"},
		{"upi prefix strips trailing ref", "UPI-merchant@ybl-123456", "merchant@ybl"},
		{"upi prefix with order suffix", "UPI-zomato@paytm-Order123", "zomato@paytm"},
		{"plain handle", "Transfer to swiggy@paytm", "swiggy@paytm"},
		{"dotted name", "UPI-john.doe@okaxis-123", "john.doe@okaxis"},
		{"no upi id", "NEFT Transfer to John", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUPIID(tt.text))
		})
	}
}

func TestExtractPaymentMethod(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"upi token", "UPI/297518249928/DR/Hai", "UPI"},
		{"bare at sign implies upi", "swiggy@paytm payment", "UPI"},
		{"rtgs beats imps", "RTGS IMPS transfer", "RTGS"},
		{"imps", "IMPS-P2A-12345", "IMPS"},
		{"neft", "NEFT Transfer to John", "NEFT"},
		{"atm withdrawal", "ATM WDL-123456", "ATM"},
		{"cheque", "CHQ PAID 001234", "Cheque"},
		{"cash deposit", "CASH DEP SELF", "Cash"},
		{"pos is card", "POS Purchase", "Card"},
		{"debit card", "DEBIT CARD 4412 AMAZON", "Card"},
		{"no match", "Opening Balance", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPaymentMethod(tt.text))
		})
	}
}

func TestExtractTransactionRef(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"upi ref", "UPI/297518249928/DR/Hai", "297518249928"},
		{"labelled ref", "REF:ABC123456", "ABC123456"},
		{"reference with space", "Reference: 999888777", "999888777"},
		{"neft inline ref", "NEFT-REF123456789", "123456789"},
		{"txn id", "Transaction ID: 987654321", "987654321"},
		{"r series", "NEFT/R123456789/John", "R123456789"},
		{"long numeric fallback", "Transfer-1234567890123", "1234567890123"},
		{"bare ref label ignored", "REF: ab", ""},
		{"nothing", "Coffee Shop", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTransactionRef(tt.text))
		})
	}
}

func TestExtractMerchantName(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		upiID string
		want  string
	}{
		{"upi name part mapping", "UPI-swiggy@paytm-123456789", "swiggy@paytm", "Swiggy"},
		{"numeric name falls to handle", "e/YESB/-29411985@ptybl", "-29411985@ptybl", "Paytm"},
		{"handle mapping for short name", "pay 123@ybl", "123@ybl", "PhonePe"},
		{"to pattern", "Transfer to John Doe", "", "John Doe"},
		{"last slash segment", "UPI/297518249928/DR/Hai", "", "Hai"},
		{"skips banking codes", "NEFT/R123456789/ACME Stores/CR", "", "Acme Stores"},
		{"capitalized run", "Payment to Amazon India", "", "Amazon India"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMerchantName(tt.text, tt.upiID))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	d := Parse("UPI-swiggy@paytm-123456789")

	assert.Equal(t, "swiggy@paytm", d.UPIID)
	assert.Equal(t, "UPI", d.PaymentMethod)
	assert.Equal(t, "Swiggy", d.MerchantName)
	assert.Equal(t, "UPI-swiggy@paytm-123456789", d.Raw)
}

func TestParseBatch(t *testing.T) {
	out := ParseBatch([]string{"UPI/297518249928/DR/Hai", ""})

	assert.Len(t, out, 2)
	assert.Equal(t, "Hai", out[0].MerchantName)
	assert.Equal(t, Details{}, out[1])
}
