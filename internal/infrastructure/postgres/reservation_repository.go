package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

type reservationRow struct {
	ID           int64     `db:"id"`
	EventID      int64     `db:"event_id"`
	UserEmail    string    `db:"user_email"`
	UserPhone    string    `db:"user_phone"`
	Status       string    `db:"status"`
	NumOfTickets int       `db:"num_of_tickets"`
	TotalCost    int64     `db:"total_cost"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *reservationRow) toEntity() (*reservation.Reservation, error) {
	status, err := reservation.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("予約 %d: %w", r.ID, err)
	}
	return &reservation.Reservation{
		ID: r.ID, EventID: r.EventID, UserEmail: r.UserEmail, UserPhone: r.UserPhone,
		Status: status, NumOfTickets: r.NumOfTickets, TotalCost: r.TotalCost,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

// ReservationRepository は予約リポジトリのPostgreSQL実装
type ReservationRepository struct{ db *sqlx.DB }

// NewReservationRepository はReservationRepositoryを作成する
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create は予約を作成し ID を設定する
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO reservations (event_id, user_email, user_phone, status, num_of_tickets, total_cost, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query,
		res.EventID, res.UserEmail, res.UserPhone, string(res.Status), res.NumOfTickets, res.TotalCost, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT id, event_id, user_email, user_phone, status, num_of_tickets, total_cost, created_at, updated_at FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity()
}

// CountByEventID はイベントの予約件数を取得する
func (r *ReservationRepository) CountByEventID(ctx context.Context, eventID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reservations WHERE event_id = $1`, eventID); err != nil {
		return 0, fmt.Errorf("予約件数の取得に失敗: %w", err)
	}
	return count, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
