package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/outbox"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/policy"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/venue"
	redisinfra "github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/metrics"
)

// ReservationService は予約の作成と参照を行う
type ReservationService struct {
	txManager       transaction.Manager
	eventRepo       event.Repository
	ticketRepo      ticket.Repository
	venueRepo       venue.Repository
	reservationRepo reservation.Repository
	outboxRepo      outbox.Repository
	ticketCache     redisinfra.TicketCacheInterface
	rules           []policy.Rule
	metrics         *metrics.Metrics
}

// NewReservationService は ReservationService を作成する
// ticketCache は nil でもよい
func NewReservationService(
	txm transaction.Manager,
	er event.Repository,
	tr ticket.Repository,
	vr venue.Repository,
	rr reservation.Repository,
	or outbox.Repository,
	tc redisinfra.TicketCacheInterface,
) *ReservationService {
	return &ReservationService{
		txManager:       txm,
		eventRepo:       er,
		ticketRepo:      tr,
		venueRepo:       vr,
		reservationRepo: rr,
		outboxRepo:      or,
		ticketCache:     tc,
		rules:           policy.DefaultRules(),
	}
}

// WithMetrics はメトリクスを設定する
func (s *ReservationService) WithMetrics(m *metrics.Metrics) *ReservationService {
	s.metrics = m
	return s
}

type CreateReservationInput struct {
	EventID   int64
	UserEmail string
	UserPhone string
	TicketIDs []int64
}

// CreateReservation はチケットをまとめて予約する
// イベント取得から予約IDの設定までをひとつのトランザクションで行い、失敗時は何も変更しない
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	start := time.Now()
	res, err := s.createReservation(ctx, input)
	status := reservationStatus(err)
	s.metrics.ObserveReservation(status, time.Since(start))

	if err != nil {
		fields := []zap.Field{
			zap.Int64("event_id", input.EventID),
			zap.Int64s("ticket_ids", input.TicketIDs),
			zap.String("status", status),
			zap.Error(err),
		}
		var verr *policy.ViolationError
		if errors.As(err, &verr) {
			s.metrics.IncPolicyRejection(string(verr.Kind))
			fields = append(fields, zap.String("rule", string(verr.Kind)))
		}
		if status == metrics.StatusError {
			logger.Error("予約作成に失敗しました", fields...)
		} else {
			logger.Warn("予約を受け付けませんでした", fields...)
		}
		return nil, err
	}

	if s.ticketCache != nil {
		if err := s.ticketCache.Invalidate(ctx, res.EventID); err != nil {
			logger.Warn("キャッシュ無効化に失敗", zap.Int64("event_id", res.EventID), zap.Error(err))
		}
	}
	logger.Info("予約を作成しました",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("event_id", res.EventID),
		zap.Int64s("ticket_ids", ticket.IDs(res.Tickets)),
		zap.Int64("total_cost", res.TotalCost),
	)
	return res, nil
}

func (s *ReservationService) createReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		ev, err := s.eventRepo.GetByID(ctx, tx, input.EventID)
		if err != nil {
			return err
		}
		if len(input.TicketIDs) == 0 {
			return reservation.ErrNoTickets
		}

		// 座席番号順に取得・行ロックされる
		tickets, err := s.ticketRepo.GetByIDsForUpdate(ctx, tx, input.TicketIDs)
		if err != nil {
			return err
		}
		if missing := unresolvedTicketIDs(input.TicketIDs, tickets, ev.ID); len(missing) > 0 {
			return &ticket.NotFoundError{TicketIDs: missing}
		}

		var taken []int64
		for _, t := range tickets {
			if t.IsReserved() {
				taken = append(taken, t.ID)
			}
		}
		if len(taken) > 0 {
			return &ticket.AlreadyReservedError{TicketIDs: taken}
		}

		if err := policy.Evaluate(ctx, s.rules, policy.Input{
			Event:   ev,
			Tickets: tickets,
			Seats:   &txSeatStateLoader{tx: tx, venueRepo: s.venueRepo, ticketRepo: s.ticketRepo},
		}); err != nil {
			return err
		}

		res = reservation.NewReservation(ev.ID, input.UserEmail, input.UserPhone, tickets)
		if err := res.Validate(); err != nil {
			return err
		}
		if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
			return err
		}
		if err := s.ticketRepo.AssignReservation(ctx, tx, ticket.IDs(tickets), res.ID); err != nil {
			return err
		}
		for _, t := range tickets {
			if err := t.AssignTo(res.ID); err != nil {
				return err
			}
		}

		msg, err := outbox.NewMessage(outbox.TopicReservationCreated, outbox.ReservationCreated{
			ReservationID: res.ID,
			EventID:       res.EventID,
			UserEmail:     res.UserEmail,
			TicketIDs:     ticket.IDs(tickets),
			TotalCost:     res.TotalCost,
		})
		if err != nil {
			return err
		}
		return s.outboxRepo.Append(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetReservation は予約をチケット付きで取得する
func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tickets, err := s.ticketRepo.GetByReservationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("予約チケットの取得に失敗: %w", err)
	}
	res.Tickets = tickets
	return res, nil
}

// unresolvedTicketIDs は要求されたIDのうち、このイベントのチケットとして解決できなかったものを要求順に返す
func unresolvedTicketIDs(requested []int64, resolved []*ticket.Ticket, eventID int64) []int64 {
	found := make(map[int64]struct{}, len(resolved))
	for _, t := range resolved {
		if t.EventID == eventID {
			found[t.ID] = struct{}{}
		}
	}
	var missing []int64
	seen := make(map[int64]struct{}, len(requested))
	for _, id := range requested {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func reservationStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, event.ErrEventNotFound), errors.Is(err, ticket.ErrTicketNotFound):
		return metrics.StatusNotFound
	case errors.Is(err, reservation.ErrNoTickets):
		return metrics.StatusInvalid
	case errors.Is(err, ticket.ErrTicketAlreadyReserved):
		return metrics.StatusConflict
	case errors.Is(err, policy.ErrPolicyViolation):
		return metrics.StatusPolicyViolation
	default:
		return metrics.StatusError
	}
}

// txSeatStateLoader は予約トランザクション内で区画をロックしてから座席状況を読む
type txSeatStateLoader struct {
	tx         transaction.Tx
	venueRepo  venue.Repository
	ticketRepo ticket.Repository
}

func (l *txSeatStateLoader) LoadSeatStates(ctx context.Context, eventID int64, sectorIDs []int64) ([]*ticket.SeatState, error) {
	if err := l.venueRepo.LockSectors(ctx, l.tx, sectorIDs); err != nil {
		return nil, err
	}
	return l.ticketRepo.GetSeatStates(ctx, l.tx, eventID, sectorIDs)
}
