package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// TicketCacheInterface は空きチケット数キャッシュの抽象
type TicketCacheInterface interface {
	GetAvailableCount(ctx context.Context, eventID int64) (int, error)
	SetAvailableCount(ctx context.Context, eventID int64, count int) error
	Invalidate(ctx context.Context, eventID int64) error
}

// TicketCache はイベントごとの空きチケット数をキャッシュする
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTicketCache は新しいTicketCacheインスタンスを作成する
func NewTicketCache(client *redis.Client, ttl time.Duration) *TicketCache {
	return &TicketCache{client: client, ttl: ttl}
}

// GetAvailableCount はイベントの空きチケット数をキャッシュから取得する
func (c *TicketCache) GetAvailableCount(ctx context.Context, eventID int64) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey(eventID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount はイベントの空きチケット数をキャッシュに保存する
func (c *TicketCache) SetAvailableCount(ctx context.Context, eventID int64, count int) error {
	if err := c.client.Set(ctx, availableCountKey(eventID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *TicketCache) Invalidate(ctx context.Context, eventID int64) error {
	if err := c.client.Del(ctx, availableCountKey(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availableCountKey(eventID int64) string {
	return fmt.Sprintf("tickets:available:%d", eventID)
}

var _ TicketCacheInterface = (*TicketCache)(nil)
