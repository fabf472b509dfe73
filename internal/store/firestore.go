package store

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store using Firestore. Mappings live in the
// merchant_mappings collection keyed by a deterministic userId_merchantName
// document ID so concurrent upserts cannot create duplicates.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) docID(userID, merchantName string) string {
	return fmt.Sprintf("%s_%s", userID, merchantName)
}

// GetMerchantMapping returns the mapping for a merchant, or nil if absent.
func (s *FirestoreStore) GetMerchantMapping(ctx context.Context, userID, merchantName string) (*MerchantMapping, error) {
	doc, err := s.client.Collection("merchant_mappings").Doc(s.docID(userID, merchantName)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant mapping: %w", err)
	}
	var m MerchantMapping
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decode merchant mapping: %w", err)
	}
	return &m, nil
}

// ListMerchantMappings returns all mappings for a user, sorted by
// confidence descending, most recently updated first.
func (s *FirestoreStore) ListMerchantMappings(ctx context.Context, userID string) ([]*MerchantMapping, error) {
	iter := s.client.Collection("merchant_mappings").Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var mappings []*MerchantMapping
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list merchant mappings: %w", err)
		}
		var m MerchantMapping
		if err := doc.DataTo(&m); err != nil {
			continue
		}
		mappings = append(mappings, &m)
	}
	sort.Slice(mappings, func(i, j int) bool {
		if mappings[i].Confidence != mappings[j].Confidence {
			return mappings[i].Confidence > mappings[j].Confidence
		}
		return mappings[i].UpdatedAt.After(mappings[j].UpdatedAt)
	})
	return mappings, nil
}

// UpsertMerchantMapping creates or replaces a mapping.
func (s *FirestoreStore) UpsertMerchantMapping(ctx context.Context, mapping *MerchantMapping) error {
	docID := s.docID(mapping.UserID, mapping.MerchantName)
	_, err := s.client.Collection("merchant_mappings").Doc(docID).Set(ctx, mapping)
	if err != nil {
		return fmt.Errorf("upsert merchant mapping: %w", err)
	}
	return nil
}

// DeleteMerchantMapping removes a mapping, reporting whether it existed.
func (s *FirestoreStore) DeleteMerchantMapping(ctx context.Context, userID, merchantName string) (bool, error) {
	ref := s.client.Collection("merchant_mappings").Doc(s.docID(userID, merchantName))
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("get merchant mapping: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return false, fmt.Errorf("delete merchant mapping: %w", err)
	}
	return true, nil
}
