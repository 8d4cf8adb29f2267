package reservation

import (
	"time"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
)

// Status は予約の状態を表す
type Status string

const (
	StatusReserved Status = "RESERVED"
	// StatusPaid への遷移は決済側の責務で、このサービスでは生成しない
	StatusPaid Status = "PAID"
)

// ParseStatus は文字列から予約状態を得る
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReserved, StatusPaid:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Reservation は予約エンティティを表す
// NumOfTickets はチケット数、TotalCost はチケット価格の合計と常に一致する
type Reservation struct {
	ID           int64
	EventID      int64
	UserEmail    string
	UserPhone    string
	Status       Status
	NumOfTickets int
	TotalCost    int64
	Tickets      []*ticket.Ticket
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewReservation はチケット一覧から新しい予約を作成する
func NewReservation(eventID int64, userEmail, userPhone string, tickets []*ticket.Ticket) *Reservation {
	now := time.Now()
	return &Reservation{
		EventID:      eventID,
		UserEmail:    userEmail,
		UserPhone:    userPhone,
		Status:       StatusReserved,
		NumOfTickets: len(tickets),
		TotalCost:    ticket.TotalCost(tickets),
		Tickets:      tickets,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsPaid は予約が支払い済みかを返す
func (r *Reservation) IsPaid() bool {
	return r.Status == StatusPaid
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.EventID <= 0 {
		return ErrEventIDRequired
	}
	if r.NumOfTickets == 0 {
		return ErrNoTickets
	}
	if r.NumOfTickets != len(r.Tickets) {
		return ErrTicketCountMismatch
	}
	if r.TotalCost != ticket.TotalCost(r.Tickets) {
		return ErrTotalCostMismatch
	}
	return nil
}
