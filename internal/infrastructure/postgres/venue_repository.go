package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/venue"
)

type venueRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type sectorRow struct {
	ID         int64  `db:"id"`
	VenueID    int64  `db:"venue_id"`
	RefName    string `db:"ref_name"`
	TotalSeats int    `db:"total_seats"`
}

type seatRow struct {
	ID         int64  `db:"id"`
	SectorID   int64  `db:"sector_id"`
	RefName    string `db:"ref_name"`
	SeatNumber int    `db:"seat_number"`
}

// VenueRepository は会場リポジトリのPostgreSQL実装
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository はVenueRepositoryを作成する
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// Create は会場・区画・座席を作成し、それぞれにIDを設定する
func (r *VenueRepository) Create(ctx context.Context, tx transaction.Tx, v *venue.Venue) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO venues (name, address, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query, v.Name, v.Address, v.Phone, v.CreatedAt, v.UpdatedAt).Scan(&v.ID); err != nil {
		if isUniqueViolation(err) {
			return venue.ErrVenueAlreadyExists
		}
		return fmt.Errorf("会場作成に失敗: %w", err)
	}

	for _, s := range v.Sectors {
		s.VenueID = v.ID
		if err := sqlTx.QueryRowContext(ctx,
			`INSERT INTO sectors (venue_id, ref_name, total_seats) VALUES ($1, $2, $3) RETURNING id`,
			s.VenueID, s.RefName, s.TotalSeats,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("区画作成に失敗: %w", err)
		}
		if err := r.createSeats(ctx, sqlTx, s); err != nil {
			return err
		}
	}
	return nil
}

// createSeats はマルチバリューINSERTで座席を作成し、座席番号でIDを対応付ける
func (r *VenueRepository) createSeats(ctx context.Context, tx *sqlx.Tx, s *venue.Sector) error {
	if len(s.Seats) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(s.Seats)*3)
	placeholders := make([]string, 0, len(s.Seats))
	for i, seat := range s.Seats {
		base := i * 3
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, s.ID, seat.RefName, seat.SeatNumber)
	}

	query := `INSERT INTO seats (sector_id, ref_name, seat_number) VALUES ` + strings.Join(placeholders, ", ") + ` RETURNING id, seat_number`
	var created []seatRow
	if err := tx.SelectContext(ctx, &created, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}

	ids := make(map[int]int64, len(created))
	for _, row := range created {
		ids[row.SeatNumber] = row.ID
	}
	for _, seat := range s.Seats {
		seat.SectorID = s.ID
		seat.ID = ids[seat.SeatNumber]
	}
	return nil
}

// GetByID はIDから会場を区画・座席付きで取得する
func (r *VenueRepository) GetByID(ctx context.Context, id int64) (*venue.Venue, error) {
	return r.get(ctx, `SELECT id, name, address, phone, created_at, updated_at FROM venues WHERE id = $1`, id)
}

// GetByName は名前から会場を区画・座席付きで取得する
func (r *VenueRepository) GetByName(ctx context.Context, name string) (*venue.Venue, error) {
	return r.get(ctx, `SELECT id, name, address, phone, created_at, updated_at FROM venues WHERE name = $1`, name)
}

func (r *VenueRepository) get(ctx context.Context, query string, arg interface{}) (*venue.Venue, error) {
	var row venueRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrVenueNotFound
		}
		return nil, fmt.Errorf("会場取得に失敗: %w", err)
	}

	var sectors []sectorRow
	if err := r.db.SelectContext(ctx, &sectors,
		`SELECT id, venue_id, ref_name, total_seats FROM sectors WHERE venue_id = $1 ORDER BY id`, row.ID,
	); err != nil {
		return nil, fmt.Errorf("区画取得に失敗: %w", err)
	}

	var seats []seatRow
	if err := r.db.SelectContext(ctx, &seats,
		`SELECT s.id, s.sector_id, s.ref_name, s.seat_number FROM seats s JOIN sectors sc ON sc.id = s.sector_id WHERE sc.venue_id = $1 ORDER BY s.sector_id, s.seat_number`, row.ID,
	); err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}

	v := &venue.Venue{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address,
		Phone:     row.Phone,
		Sectors:   make([]*venue.Sector, 0, len(sectors)),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	byID := make(map[int64]*venue.Sector, len(sectors))
	for _, sr := range sectors {
		s := &venue.Sector{ID: sr.ID, VenueID: sr.VenueID, RefName: sr.RefName, TotalSeats: sr.TotalSeats}
		byID[s.ID] = s
		v.Sectors = append(v.Sectors, s)
	}
	for _, st := range seats {
		if s, ok := byID[st.SectorID]; ok {
			s.Seats = append(s.Seats, &venue.Seat{ID: st.ID, SectorID: st.SectorID, RefName: st.RefName, SeatNumber: st.SeatNumber})
		}
	}
	return v, nil
}

// LockSectors は区画行を昇順に行ロックする
// 同じ区画への予約はここで直列化される
func (r *VenueRepository) LockSectors(ctx context.Context, tx transaction.Tx, sectorIDs []int64) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	if len(sectorIDs) == 0 {
		return nil
	}
	var locked []int64
	if err := sqlTx.SelectContext(ctx, &locked,
		`SELECT id FROM sectors WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(sectorIDs),
	); err != nil {
		return fmt.Errorf("区画ロックに失敗: %w", err)
	}
	return nil
}

// Delete は会場に属するイベント・チケット・座席・区画を子から順に削除する
func (r *VenueRepository) Delete(ctx context.Context, tx transaction.Tx, id int64) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}

	var lockedID int64
	if err := sqlTx.GetContext(ctx, &lockedID, `SELECT id FROM venues WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return venue.ErrVenueNotFound
		}
		return fmt.Errorf("会場取得に失敗: %w", err)
	}

	var reserved int
	if err := sqlTx.GetContext(ctx, &reserved,
		`SELECT COUNT(*) FROM tickets WHERE venue_id = $1 AND reservation_id IS NOT NULL`, id,
	); err != nil {
		return fmt.Errorf("予約済みチケットの確認に失敗: %w", err)
	}
	if reserved > 0 {
		return venue.ErrVenueHasReservations
	}

	steps := []struct {
		query string
		what  string
	}{
		{`DELETE FROM tickets WHERE venue_id = $1`, "チケット"},
		{`DELETE FROM events WHERE venue_id = $1`, "イベント"},
		{`DELETE FROM seats WHERE sector_id IN (SELECT id FROM sectors WHERE venue_id = $1)`, "座席"},
		{`DELETE FROM sectors WHERE venue_id = $1`, "区画"},
		{`DELETE FROM venues WHERE id = $1`, "会場"},
	}
	for _, step := range steps {
		if _, err := sqlTx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("%s削除に失敗: %w", step.what, err)
		}
	}
	return nil
}

var _ venue.Repository = (*VenueRepository)(nil)
