package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	redisinfra "github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
)

type EventService struct {
	eventRepo   event.Repository
	ticketRepo  ticket.Repository
	ticketCache redisinfra.TicketCacheInterface
}

// NewEventService は EventService を作成する
// ticketCache が nil の場合は毎回DBを参照する
func NewEventService(eventRepo event.Repository, ticketRepo ticket.Repository, ticketCache redisinfra.TicketCacheInterface) *EventService {
	return &EventService{eventRepo: eventRepo, ticketRepo: ticketRepo, ticketCache: ticketCache}
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, nil, id)
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

// CountAvailableTickets はイベントの未予約チケット数を返す
// キャッシュにあればそれを返し、なければDBから数えてキャッシュする
func (s *EventService) CountAvailableTickets(ctx context.Context, eventID int64) (int, error) {
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return 0, err
	}

	if s.ticketCache != nil {
		count, err := s.ticketCache.GetAvailableCount(ctx, eventID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得に失敗", zap.Int64("event_id", eventID), zap.Error(err))
		}
	}

	count, err := s.ticketRepo.CountAvailableByEventID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if s.ticketCache != nil {
		if err := s.ticketCache.SetAvailableCount(ctx, eventID, count); err != nil {
			logger.Warn("キャッシュ保存に失敗", zap.Int64("event_id", eventID), zap.Error(err))
		}
	}
	return count, nil
}
