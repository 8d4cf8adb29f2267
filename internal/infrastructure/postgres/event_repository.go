package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID                        int64     `db:"id"`
	VenueID                   int64     `db:"venue_id"`
	Name                      string    `db:"name"`
	Address                   string    `db:"address"`
	EvenCountRequired         bool      `db:"even_count_required"`
	AllTogetherRequired       bool      `db:"all_together_required"`
	AvoidIsolatedSeatRequired bool      `db:"avoid_isolated_seat_required"`
	CreatedAt                 time.Time `db:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:                        r.ID,
		VenueID:                   r.VenueID,
		Name:                      r.Name,
		Address:                   r.Address,
		EvenCountRequired:         r.EvenCountRequired,
		AllTogetherRequired:       r.AllTogetherRequired,
		AvoidIsolatedSeatRequired: r.AvoidIsolatedSeatRequired,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}

const eventColumns = `id, venue_id, name, address, even_count_required, all_together_required, avoid_isolated_seat_required, created_at, updated_at`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (venue_id, name, address, even_count_required, all_together_required, avoid_isolated_seat_required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = sqlTx.QueryRowContext(ctx, query,
		e.VenueID, e.Name, e.Address, e.EvenCountRequired, e.AllTogetherRequired, e.AvoidIsolatedSeatRequired, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return event.ErrEventAlreadyExists
		}
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, tx transaction.Tx, id int64) (*event.Event, error) {
	var row eventRow
	err := sqlx.GetContext(ctx, execer(r.db, tx), &row, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByName は名前からイベントを取得する
func (r *EventRepository) GetByName(ctx context.Context, name string) (*event.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧をID順に取得する
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+eventColumns+` FROM events ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
