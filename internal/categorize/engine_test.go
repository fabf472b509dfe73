package categorize

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/backend/internal/statement"
	"github.com/expenseflow/backend/internal/store"
)

type fakeOracle struct {
	result *Classification
	err    error
	calls  int
}

func (f *fakeOracle) Classify(_ context.Context, _ string, _ decimal.Decimal) (*Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"upi prefix and txn id", "UPI-AMAZON PAY-12345678", "amazon pay"},
		{"order number", "Swiggy Order #12345678", "swiggy order"},
		{"atm narration", "ATM WDL 12345", "atm wdl 12345"},
		{"punctuation to spaces", "CRED.CLUB/payment", "cred club payment"},
		{"already normalized", "amazon pay", "amazon pay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMerchant(tt.desc))
		})
	}
}

func TestNormalizeMerchantIdempotent(t *testing.T) {
	for _, desc := range []string{"UPI-AMAZON PAY-12345678", "POS-Some Store 99887766", "Transfer to Ramesh"} {
		once := NormalizeMerchant(desc)
		assert.Equal(t, once, NormalizeMerchant(once))
	}
}

func TestCategorizeIncomeShortCircuits(t *testing.T) {
	oracle := &fakeOracle{}
	e := NewEngine(store.NewMemoryStore(), oracle)

	got := e.Categorize(context.Background(), "SALARY CREDIT", decimal.New(50000, 0), "u1", statement.Income)

	assert.Equal(t, CategoryIncome, got)
	assert.Zero(t, oracle.calls)
}

func TestCategorizeKeywordBeatsOracle(t *testing.T) {
	oracle := &fakeOracle{result: &Classification{Category: CategoryOther}}
	e := NewEngine(store.NewMemoryStore(), oracle)

	got := e.Categorize(context.Background(), "UBER TRIP 1234", decimal.New(250, 0), "u1", statement.Expense)

	assert.Equal(t, CategoryTransport, got)
	assert.Zero(t, oracle.calls, "keyword hit must never reach the classifier")
}

func TestCategorizeLearnedMappingPriority(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := NewEngine(st, nil)

	// "DMART" would normally match Groceries, but a twice-confirmed
	// learned mapping overrides keywords.
	require.NoError(t, st.UpsertMerchantMapping(ctx, &store.MerchantMapping{
		UserID:       "u1",
		MerchantName: NormalizeMerchant("DMART AVENUE"),
		Category:     CategoryShopping,
		Confidence:   2,
	}))

	assert.Equal(t, CategoryShopping, e.Categorize(ctx, "DMART AVENUE", decimal.New(900, 0), "u1", statement.Expense))

	// With confidence 1 the keyword match wins.
	require.NoError(t, st.UpsertMerchantMapping(ctx, &store.MerchantMapping{
		UserID:       "u1",
		MerchantName: NormalizeMerchant("DMART AVENUE"),
		Category:     CategoryShopping,
		Confidence:   1,
	}))
	assert.Equal(t, CategoryGroceries, e.Categorize(ctx, "DMART AVENUE", decimal.New(900, 0), "u1", statement.Expense))
}

func TestCategorizeLowConfidenceLearnedBeatsOracle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	oracle := &fakeOracle{result: &Classification{Category: CategoryBills}}
	e := NewEngine(st, oracle)

	require.NoError(t, st.UpsertMerchantMapping(ctx, &store.MerchantMapping{
		UserID:       "u1",
		MerchantName: NormalizeMerchant("Ramesh Kumar"),
		Category:     CategoryRent,
		Confidence:   1,
	}))

	assert.Equal(t, CategoryRent, e.Categorize(ctx, "Ramesh Kumar", decimal.New(15000, 0), "u1", statement.Expense))
	assert.Zero(t, oracle.calls)
}

func TestCategorizeOracleOnlyForAmbiguous(t *testing.T) {
	ctx := context.Background()
	oracle := &fakeOracle{result: &Classification{Category: CategoryTransport, Confidence: ConfidenceMedium}}
	e := NewEngine(store.NewMemoryStore(), oracle)

	// Ambiguous person-name description goes to the oracle.
	got := e.Categorize(ctx, "Ramesh Kumar", decimal.New(200, 0), "u1", statement.Expense)
	assert.Equal(t, CategoryTransport, got)
	assert.Equal(t, 1, oracle.calls)

	// An unmatched but descriptive string stays local and defaults to Other.
	got = e.Categorize(ctx, "quarterly society maintenance dues collected", decimal.New(200, 0), "u1", statement.Expense)
	assert.Equal(t, CategoryOther, got)
	assert.Equal(t, 1, oracle.calls)
}

func TestCategorizeOracleFailureDefaultsToOther(t *testing.T) {
	oracle := &fakeOracle{err: &OracleError{Message: "rate limit exceeded", RateLimited: true}}
	e := NewEngine(store.NewMemoryStore(), oracle)

	got := e.Categorize(context.Background(), "Ramesh Kumar", decimal.New(200, 0), "u1", statement.Expense)

	assert.Equal(t, CategoryOther, got)
}

func TestSuggestMerchantDatabase(t *testing.T) {
	e := NewEngine(store.NewMemoryStore(), nil)

	r := e.Suggest(context.Background(), "some narration", decimal.New(300, 0), "u1", "Swiggy", "")

	assert.Equal(t, CategoryGroceries, r.Category)
	assert.Equal(t, SourceMerchant, r.Source)
	assert.False(t, r.NeedsClarification)
}

func TestSuggestOracleClarificationRules(t *testing.T) {
	tests := []struct {
		name       string
		result     *Classification
		wantNeeds  bool
		wantSource string
	}{
		{"low confidence asks", &Classification{Category: CategoryBills, Confidence: ConfidenceLow}, true, SourceOracle},
		{"medium on ambiguous asks", &Classification{Category: CategoryBills, Confidence: ConfidenceMedium}, true, SourceOracle},
		{"high is accepted", &Classification{Category: CategoryBills, Confidence: ConfidenceHigh}, false, SourceOracle},
		{"other always asks", &Classification{Category: CategoryOther, Confidence: ConfidenceHigh}, true, SourceOracle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(store.NewMemoryStore(), &fakeOracle{result: tt.result})
			r := e.Suggest(context.Background(), "Ramesh Kumar", decimal.New(100, 0), "u1", "", "")
			assert.Equal(t, tt.wantNeeds, r.NeedsClarification)
			assert.Equal(t, tt.wantSource, r.Source)
		})
	}
}

func TestSuggestOracleFailureFallsBack(t *testing.T) {
	e := NewEngine(store.NewMemoryStore(), &fakeOracle{err: &OracleError{Message: "boom", Retryable: false}})

	r := e.Suggest(context.Background(), "Ramesh Kumar", decimal.New(100, 0), "u1", "", "")

	assert.Equal(t, CategoryOther, r.Category)
	assert.Equal(t, SourceFallback, r.Source)
	assert.True(t, r.NeedsClarification)
}

func TestConfirmCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := NewEngine(st, nil)

	c, err := e.ConfirmCategory(ctx, "u1", "UPI-AMAZON PAY-12345678", CategoryShopping)
	require.NoError(t, err)
	assert.Equal(t, "created", c.Action)
	assert.Equal(t, "amazon pay", c.Mapping.MerchantName)
	assert.Equal(t, 1, c.Mapping.Confidence)

	// Same category again increments confidence.
	c, err = e.ConfirmCategory(ctx, "u1", "UPI-AMAZON PAY-99887766", CategoryShopping)
	require.NoError(t, err)
	assert.Equal(t, "updated", c.Action)
	assert.Equal(t, 2, c.Mapping.Confidence)

	// Category change resets confidence to 1.
	c, err = e.ConfirmCategory(ctx, "u1", "UPI-AMAZON PAY-12345678", CategoryBills)
	require.NoError(t, err)
	assert.Equal(t, "updated", c.Action)
	assert.Equal(t, CategoryBills, c.Mapping.Category)
	assert.Equal(t, 1, c.Mapping.Confidence)
}

func TestConfirmCategoryRejectsUnknownCategory(t *testing.T) {
	e := NewEngine(store.NewMemoryStore(), nil)

	_, err := e.ConfirmCategory(context.Background(), "u1", "some shop", "NotACategory")

	assert.Error(t, err)
}

func TestParseClassification(t *testing.T) {
	content := "CATEGORY: Transport\nCONFIDENCE: medium\nALTERNATIVES: Bills, Other\nREASONING: Payment for parking suggests transportation costs."

	c := parseClassification(content)

	assert.Equal(t, CategoryTransport, c.Category)
	assert.Equal(t, ConfidenceMedium, c.Confidence)
	assert.Equal(t, []string{"Bills", "Other"}, c.Alternatives)
	assert.Contains(t, c.Reasoning, "parking")
}

func TestParseClassificationGarbage(t *testing.T) {
	c := parseClassification("no structure at all")

	assert.Equal(t, CategoryOther, c.Category)
	assert.Equal(t, ConfidenceLow, c.Confidence)
	assert.Empty(t, c.Alternatives)
}
