package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/venue"
	redisinfra "github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/metrics"
)

const (
	seedLockTTL        = 30 * time.Second
	seedLockRetries    = 10
	seedLockRetryDelay = 500 * time.Millisecond
)

// SectorSeed は区画の初期データ
type SectorSeed struct {
	RefName    string
	TotalSeats int
}

// VenueSeed は会場の初期データ
type VenueSeed struct {
	Name    string
	Address string
	Phone   string
	Sectors []SectorSeed
}

// EventSeed はイベントの初期データ
// 会場の全座席に1枚ずつチケットを作る。価格は区画ごとに SectorCosts で指定し、なければ DefaultCost
type EventSeed struct {
	Name        string
	Address     string
	VenueName   string
	Options     event.Options
	SectorCosts map[string]int64
	DefaultCost int64
}

// DemoSeed は6席の列を2つ持つ会場と、全ルールを有効にしたイベントを返す
func DemoSeed() (VenueSeed, EventSeed) {
	v := VenueSeed{
		Name:    "Concert Venue",
		Address: "UK",
		Phone:   "123",
		Sectors: []SectorSeed{
			{RefName: "Row 1", TotalSeats: 6},
			{RefName: "Row 2", TotalSeats: 6},
		},
	}
	e := EventSeed{
		Name:      "Concert Event",
		Address:   "UK",
		VenueName: v.Name,
		Options: event.Options{
			EvenCount:         true,
			AllTogether:       true,
			AvoidIsolatedSeat: true,
		},
		SectorCosts: map[string]int64{"Row 1": 100, "Row 2": 60},
	}
	return v, e
}

// ProvisioningService は会場・イベント・チケットの初期データを投入する
// 同じ名前のデータが既にあれば作成せずにそれを返す
type ProvisioningService struct {
	txManager   transaction.Manager
	venueRepo   venue.Repository
	eventRepo   event.Repository
	ticketRepo  ticket.Repository
	lockManager redisinfra.LockManagerInterface
	metrics     *metrics.Metrics
}

// NewProvisioningService は ProvisioningService を作成する
// lockManager が nil の場合はロックなしで投入する（単一インスタンス向け）
func NewProvisioningService(
	txm transaction.Manager,
	vr venue.Repository,
	er event.Repository,
	tr ticket.Repository,
	lm redisinfra.LockManagerInterface,
) *ProvisioningService {
	return &ProvisioningService{txManager: txm, venueRepo: vr, eventRepo: er, ticketRepo: tr, lockManager: lm}
}

// WithMetrics はメトリクスを設定する
func (s *ProvisioningService) WithMetrics(m *metrics.Metrics) *ProvisioningService {
	s.metrics = m
	return s
}

// SeedVenue は会場と区画・座席を作成する
func (s *ProvisioningService) SeedVenue(ctx context.Context, seed VenueSeed) (*venue.Venue, error) {
	var result *venue.Venue
	err := s.withLock(ctx, "seed:venue:"+seed.Name, func() error {
		existing, err := s.venueRepo.GetByName(ctx, seed.Name)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, venue.ErrVenueNotFound) {
			return err
		}

		v := venue.NewVenue(seed.Name, seed.Address, seed.Phone)
		for _, sec := range seed.Sectors {
			v.AddSector(sec.RefName, sec.TotalSeats)
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("会場データが不正です: %w", err)
		}
		if err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
			return s.venueRepo.Create(ctx, tx, v)
		}); err != nil {
			return err
		}

		logger.Info("会場を作成しました", zap.Int64("venue_id", v.ID), zap.String("name", v.Name), zap.Int("sectors", len(v.Sectors)))
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SeedEvent はイベントと会場の全座席分のチケットを作成する
func (s *ProvisioningService) SeedEvent(ctx context.Context, seed EventSeed) (*event.Event, error) {
	var result *event.Event
	err := s.withLock(ctx, "seed:event:"+seed.Name, func() error {
		existing, err := s.eventRepo.GetByName(ctx, seed.Name)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, event.ErrEventNotFound) {
			return err
		}

		v, err := s.venueRepo.GetByName(ctx, seed.VenueName)
		if err != nil {
			return err
		}

		e := event.NewEvent(v.ID, seed.Name, seed.Address, seed.Options)
		if err := e.Validate(); err != nil {
			return fmt.Errorf("イベントデータが不正です: %w", err)
		}

		var tickets []*ticket.Ticket
		if err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
			if err := s.eventRepo.Create(ctx, tx, e); err != nil {
				return err
			}
			tickets = ticketsForVenue(e.ID, v, seed)
			return s.ticketRepo.CreateBulk(ctx, tx, tickets)
		}); err != nil {
			return err
		}

		logger.Info("イベントを作成しました", zap.Int64("event_id", e.ID), zap.String("name", e.Name), zap.Int("tickets", len(tickets)))
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SeedDemo はデモ用の会場とイベントを投入する
func (s *ProvisioningService) SeedDemo(ctx context.Context) (*venue.Venue, *event.Event, error) {
	vs, es := DemoSeed()
	v, err := s.SeedVenue(ctx, vs)
	if err != nil {
		return nil, nil, fmt.Errorf("デモ会場の投入に失敗: %w", err)
	}
	e, err := s.SeedEvent(ctx, es)
	if err != nil {
		return nil, nil, fmt.Errorf("デモイベントの投入に失敗: %w", err)
	}
	return v, e, nil
}

// DeleteVenue は会場と配下のデータを削除する
func (s *ProvisioningService) DeleteVenue(ctx context.Context, id int64) error {
	return transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.venueRepo.Delete(ctx, tx, id)
	})
}

func ticketsForVenue(eventID int64, v *venue.Venue, seed EventSeed) []*ticket.Ticket {
	var tickets []*ticket.Ticket
	for _, sec := range v.Sectors {
		cost, ok := seed.SectorCosts[sec.RefName]
		if !ok {
			cost = seed.DefaultCost
		}
		for _, seat := range sec.Seats {
			tickets = append(tickets, ticket.NewTicket(eventID, v.ID, seat.ID, cost))
		}
	}
	return tickets
}

func (s *ProvisioningService) withLock(ctx context.Context, key string, fn func() error) error {
	if s.lockManager == nil {
		return fn()
	}

	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, key, seedLockTTL, seedLockRetries, seedLockRetryDelay)
	if err != nil {
		s.metrics.ObserveLock("acquire", "failed", time.Since(start))
		return fmt.Errorf("初期データ投入のロック取得に失敗: %w", err)
	}
	s.metrics.ObserveLock("acquire", "success", time.Since(start))

	defer func() {
		start := time.Now()
		if err := lock.Release(ctx); err != nil {
			s.metrics.ObserveLock("release", "failed", time.Since(start))
			logger.Warn("ロック解放に失敗", zap.String("key", key), zap.Error(err))
			return
		}
		s.metrics.ObserveLock("release", "success", time.Since(start))
	}()

	return fn()
}
