package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/rohitpatil/agrimart/internal/redisx"
)

// Store keeps one hash per buyer in Redis: field product_id -> Item json.
type Store struct{ Redis *redis.Client }

func (s *Store) key(buyerID string) string {
	return fmt.Sprintf(redisx.KeyCart, buyerID)
}

func (s *Store) Add(ctx context.Context, buyerID string, item Item) error {
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	key := s.key(buyerID)

	// Adding the same product again bumps the quantity.
	if raw, err := s.Redis.HGet(ctx, key, item.ProductID).Result(); err == nil {
		var existing Item
		if err := json.Unmarshal([]byte(raw), &existing); err == nil {
			item.Quantity += existing.Quantity
		}
	}

	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	if err := s.Redis.HSet(ctx, key, item.ProductID, b).Err(); err != nil {
		return err
	}
	return s.Redis.Expire(ctx, key, redisx.TTLCart).Err()
}

func (s *Store) SetQuantity(ctx context.Context, buyerID, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	key := s.key(buyerID)
	raw, err := s.Redis.HGet(ctx, key, productID).Result()
	if err != nil {
		return err
	}
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return err
	}
	item.Quantity = qty
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.Redis.HSet(ctx, key, productID, b).Err()
}

func (s *Store) Remove(ctx context.Context, buyerID, productID string) error {
	return s.Redis.HDel(ctx, s.key(buyerID), productID).Err()
}

func (s *Store) Get(ctx context.Context, buyerID string) (Cart, error) {
	m, err := s.Redis.HGetAll(ctx, s.key(buyerID)).Result()
	if err != nil {
		return Cart{}, err
	}
	c := Cart{BuyerID: buyerID}
	for _, raw := range m {
		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return Cart{}, err
		}
		c.Items = append(c.Items, item)
	}
	sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].ProductID < c.Items[j].ProductID })
	return c, nil
}

func (s *Store) Clear(ctx context.Context, buyerID string) error {
	return s.Redis.Del(ctx, s.key(buyerID)).Err()
}
