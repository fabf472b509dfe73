package store

import (
	"context"
	"time"
)

// MerchantMapping records a user's confirmed category for a normalized
// merchant name. Confidence counts how many times the user has confirmed
// the same category for this merchant.
type MerchantMapping struct {
	UserID       string    `firestore:"userId" json:"user_id"`
	MerchantName string    `firestore:"merchantName" json:"merchant_name"`
	Category     string    `firestore:"category" json:"category"`
	Confidence   int       `firestore:"confidence" json:"confidence"`
	CreatedAt    time.Time `firestore:"createdAt" json:"created_at"`
	UpdatedAt    time.Time `firestore:"updatedAt" json:"updated_at"`
}

// Store defines the persistence operations used by the categorization
// engine for learned merchant-category mappings.
type Store interface {
	// GetMerchantMapping returns the mapping for a normalized merchant
	// name, or nil when the user has no mapping for it.
	GetMerchantMapping(ctx context.Context, userID, merchantName string) (*MerchantMapping, error)

	// ListMerchantMappings returns all mappings for a user, sorted by
	// confidence descending then most recently updated.
	ListMerchantMappings(ctx context.Context, userID string) ([]*MerchantMapping, error)

	// UpsertMerchantMapping creates or replaces a mapping keyed by
	// (userID, merchantName).
	UpsertMerchantMapping(ctx context.Context, mapping *MerchantMapping) error

	// DeleteMerchantMapping removes a mapping. Returns false when no
	// mapping existed.
	DeleteMerchantMapping(ctx context.Context, userID, merchantName string) (bool, error)
}
