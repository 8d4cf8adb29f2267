package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

type ticketRow struct {
	ID            int64  `db:"id"`
	Cost          int64  `db:"cost"`
	SeatID        int64  `db:"seat_id"`
	EventID       int64  `db:"event_id"`
	VenueID       int64  `db:"venue_id"`
	ReservationID *int64 `db:"reservation_id"`
	SeatNumber    int    `db:"seat_number"`
	SectorID      int64  `db:"sector_id"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, Cost: r.Cost, SeatID: r.SeatID, EventID: r.EventID, VenueID: r.VenueID,
		ReservationID: r.ReservationID, SeatNumber: r.SeatNumber, SectorID: r.SectorID,
	}
}

type seatStateRow struct {
	SeatID     int64 `db:"seat_id"`
	SectorID   int64 `db:"sector_id"`
	SeatNumber int   `db:"seat_number"`
	TicketID   int64 `db:"ticket_id"`
	Reserved   bool  `db:"reserved"`
}

const ticketWithSeatColumns = `t.id, t.cost, t.seat_id, t.event_id, t.venue_id, t.reservation_id, s.seat_number, s.sector_id`

// TicketRepository はチケットリポジトリのPostgreSQL実装
type TicketRepository struct{ db *sqlx.DB }

// NewTicketRepository はTicketRepositoryを作成する
func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

// CreateBulk はバッチごとのマルチバリューINSERTでチケットを作成し、IDを設定する
func (r *TicketRepository) CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}

	const batchSize = 1000
	for i := 0; i < len(tickets); i += batchSize {
		end := i + batchSize
		if end > len(tickets) {
			end = len(tickets)
		}
		if err := r.createBulkBatch(ctx, sqlTx, tickets[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *TicketRepository) createBulkBatch(ctx context.Context, tx *sqlx.Tx, tickets []*ticket.Ticket) error {
	args := make([]interface{}, 0, len(tickets)*4)
	placeholders := make([]string, 0, len(tickets))
	for i, t := range tickets {
		base := i * 4
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, t.Cost, t.SeatID, t.EventID, t.VenueID)
	}

	query := `INSERT INTO tickets (cost, seat_id, event_id, venue_id) VALUES ` + strings.Join(placeholders, ", ") + ` RETURNING id, seat_id, event_id`
	var created []ticketRow
	if err := tx.SelectContext(ctx, &created, query, args...); err != nil {
		return fmt.Errorf("チケット一括作成に失敗: %w", err)
	}

	type key struct{ seatID, eventID int64 }
	ids := make(map[key]int64, len(created))
	for _, row := range created {
		ids[key{row.SeatID, row.EventID}] = row.ID
	}
	for _, t := range tickets {
		t.ID = ids[key{t.SeatID, t.EventID}]
	}
	return nil
}

// GetByIDsForUpdate はチケットを座席番号順に取得し、その順で行ロックする
// ロック順が決まっているため、重なる予約同士でデッドロックしない
func (r *TicketRepository) GetByIDsForUpdate(ctx context.Context, tx transaction.Tx, ids []int64) ([]*ticket.Ticket, error) {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*ticket.Ticket{}, nil
	}

	query := `SELECT ` + ticketWithSeatColumns + `
		FROM tickets t JOIN seats s ON s.id = t.seat_id
		WHERE t.id = ANY($1)
		ORDER BY s.seat_number, t.id
		FOR UPDATE OF t`
	var rows []ticketRow
	if err := sqlTx.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return toTickets(rows), nil
}

// GetSeatStates は区画内の座席のうち、イベントのチケットがある座席の予約状況を取得する
func (r *TicketRepository) GetSeatStates(ctx context.Context, tx transaction.Tx, eventID int64, sectorIDs []int64) ([]*ticket.SeatState, error) {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	if len(sectorIDs) == 0 {
		return []*ticket.SeatState{}, nil
	}

	query := `SELECT s.id AS seat_id, s.sector_id, s.seat_number, t.id AS ticket_id, t.reservation_id IS NOT NULL AS reserved
		FROM seats s JOIN tickets t ON t.seat_id = s.id AND t.event_id = $2
		WHERE s.sector_id = ANY($1)
		ORDER BY s.sector_id, s.seat_number`
	var rows []seatStateRow
	if err := sqlTx.SelectContext(ctx, &rows, query, pq.Array(sectorIDs), eventID); err != nil {
		return nil, fmt.Errorf("座席状況の取得に失敗: %w", err)
	}

	states := make([]*ticket.SeatState, len(rows))
	for i, row := range rows {
		states[i] = &ticket.SeatState{
			SeatID: row.SeatID, SectorID: row.SectorID, SeatNumber: row.SeatNumber,
			TicketID: row.TicketID, Reserved: row.Reserved,
		}
	}
	return states, nil
}

// AssignReservation は未予約のチケットにだけ予約IDを設定する
// 更新件数が足りない場合は他の予約に取られたチケットを AlreadyReservedError で返す
func (r *TicketRepository) AssignReservation(ctx context.Context, tx transaction.Tx, ids []int64, reservationID int64) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	result, err := sqlTx.ExecContext(ctx,
		`UPDATE tickets SET reservation_id = $1 WHERE id = ANY($2) AND reservation_id IS NULL`,
		reservationID, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("チケットの予約紐付けに失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗: %w", err)
	}
	if int(rows) == len(ids) {
		return nil
	}

	var taken []int64
	if err := sqlTx.SelectContext(ctx, &taken,
		`SELECT id FROM tickets WHERE id = ANY($1) AND reservation_id IS NOT NULL AND reservation_id <> $2 ORDER BY id`,
		pq.Array(ids), reservationID,
	); err != nil {
		return fmt.Errorf("予約済みチケットの確認に失敗: %w", err)
	}
	return &ticket.AlreadyReservedError{TicketIDs: taken}
}

// GetByReservationID は予約に紐付くチケットを座席番号順に取得する
func (r *TicketRepository) GetByReservationID(ctx context.Context, reservationID int64) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketWithSeatColumns + `
		FROM tickets t JOIN seats s ON s.id = t.seat_id
		WHERE t.reservation_id = $1
		ORDER BY s.seat_number, t.id`
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("予約チケット取得に失敗: %w", err)
	}
	return toTickets(rows), nil
}

// CountAvailableByEventID はイベントの未予約チケット数を取得する
func (r *TicketRepository) CountAvailableByEventID(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND reservation_id IS NULL`, eventID)
	if err != nil {
		return 0, fmt.Errorf("空きチケット数の取得に失敗: %w", err)
	}
	return count, nil
}

func toTickets(rows []ticketRow) []*ticket.Ticket {
	tickets := make([]*ticket.Ticket, len(rows))
	for i := range rows {
		tickets[i] = rows[i].toEntity()
	}
	return tickets
}

var _ ticket.Repository = (*TicketRepository)(nil)
