package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUpsertAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.GetMerchantMapping(ctx, "user-1", "swiggy order")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = s.UpsertMerchantMapping(ctx, &MerchantMapping{
		UserID:       "user-1",
		MerchantName: "swiggy order",
		Category:     "Groceries",
		Confidence:   1,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	require.NoError(t, err)

	got, err = s.GetMerchantMapping(ctx, "user-1", "swiggy order")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, 1, got.Confidence)

	// Other users never see the mapping.
	other, err := s.GetMerchantMapping(ctx, "user-2", "swiggy order")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestMemoryStoreListSortsByConfidence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, m := range []*MerchantMapping{
		{UserID: "u", MerchantName: "a", Category: "Bills", Confidence: 1},
		{UserID: "u", MerchantName: "b", Category: "Rent", Confidence: 5},
		{UserID: "u", MerchantName: "c", Category: "Transport", Confidence: 3},
		{UserID: "other", MerchantName: "d", Category: "Other", Confidence: 9},
	} {
		require.NoError(t, s.UpsertMerchantMapping(ctx, m))
	}

	out, err := s.ListMerchantMappings(ctx, "u")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].MerchantName)
	assert.Equal(t, "c", out[1].MerchantName)
	assert.Equal(t, "a", out[2].MerchantName)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	deleted, err := s.DeleteMerchantMapping(ctx, "u", "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, s.UpsertMerchantMapping(ctx, &MerchantMapping{
		UserID: "u", MerchantName: "cafe", Category: "Entertainment", Confidence: 2,
	}))

	deleted, err = s.DeleteMerchantMapping(ctx, "u", "cafe")
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.GetMerchantMapping(ctx, "u", "cafe")
	require.NoError(t, err)
	assert.Nil(t, got)
}
