// Package cache keeps read copies of settled ledger entries in Redis.
// The database stays authoritative; nothing here is read on a write path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"oruswallet/internal/models"

	"github.com/redis/go-redis/v9"
)

const transactionKeyPrefix = "ledger:tx:"

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{client: client, ttl: ttl}
}

// Client exposes the underlying redis client for stores that need scripts.
func (s *CacheService) Client() *redis.Client {
	return s.client
}

// cachedTransaction carries the fields the API encoding hides, so a cache
// hit is indistinguishable from a database read.
type cachedTransaction struct {
	models.Transaction
	ID             uint       `json:"id"`
	IdempotencyKey *string    `json:"idempotency_key,omitempty"`
	DebitedAt      *time.Time `json:"debited_at,omitempty"`
}

func transactionKey(reference string) string {
	return transactionKeyPrefix + reference
}

// CacheTransaction stores tx only once it is terminal and can no longer change.
func (s *CacheService) CacheTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx == nil || !tx.Status.Terminal() {
		return nil
	}
	data, err := json.Marshal(cachedTransaction{
		Transaction:    *tx,
		ID:             tx.ID,
		IdempotencyKey: tx.IdempotencyKey,
		DebitedAt:      tx.DebitedAt,
	})
	if err != nil {
		return fmt.Errorf("encode ledger entry %s: %w", tx.Reference, err)
	}
	return s.client.Set(ctx, transactionKey(tx.Reference), data, s.ttl).Err()
}

func (s *CacheService) GetTransaction(ctx context.Context, reference string) (*models.Transaction, bool, error) {
	data, err := s.client.Get(ctx, transactionKey(reference)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read ledger entry %s: %w", reference, err)
	}

	var cached cachedTransaction
	if err := json.Unmarshal(data, &cached); err != nil {
		// A stale encoding is dropped and served from the database instead.
		_ = s.client.Del(ctx, transactionKey(reference)).Err()
		return nil, false, nil
	}
	tx := cached.Transaction
	tx.ID = cached.ID
	tx.IdempotencyKey = cached.IdempotencyKey
	tx.DebitedAt = cached.DebitedAt
	return &tx, true, nil
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
