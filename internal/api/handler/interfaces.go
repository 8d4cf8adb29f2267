package handler

import (
	"context"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/application"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/reservation"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	GetEvent(ctx context.Context, id int64) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	CountAvailableTickets(ctx context.Context, eventID int64) (int, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*reservation.Reservation, error)
}
