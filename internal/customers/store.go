// Package customers persists the chat→customer identity mapping in Redis.
// One hash per chat id, field user_moltin_id holding the commerce customer
// identifier. The record is written once, at first successful registration,
// and never updated afterwards.
package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const customerIDField = "user_moltin_id"

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Has reports whether the chat already registered a customer.
func (s *Store) Has(ctx context.Context, chatID int64) (bool, error) {
	exists, err := s.client.HExists(ctx, key(chatID), customerIDField).Result()
	if err != nil {
		return false, fmt.Errorf("redis hexists: %w", err)
	}
	return exists, nil
}

// CustomerID returns the stored customer id, or empty when none is mapped.
func (s *Store) CustomerID(ctx context.Context, chatID int64) (string, error) {
	id, err := s.client.HGet(ctx, key(chatID), customerIDField).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return id, nil
}

// Save maps the chat to its commerce customer id.
func (s *Store) Save(ctx context.Context, chatID int64, customerID string) error {
	if err := s.client.HSet(ctx, key(chatID), customerIDField, customerID).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func key(chatID int64) string {
	return fmt.Sprintf("%d", chatID)
}
