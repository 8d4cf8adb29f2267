package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/outbox"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

type outboxRow struct {
	ID          int64      `db:"id"`
	Topic       string     `db:"topic"`
	Payload     []byte     `db:"payload"`
	CreatedAt   time.Time  `db:"created_at"`
	PublishedAt *time.Time `db:"published_at"`
}

// OutboxRepository はアウトボックスのPostgreSQL実装
type OutboxRepository struct{ db *sqlx.DB }

// NewOutboxRepository はOutboxRepositoryを作成する
func NewOutboxRepository(db *sqlx.DB) *OutboxRepository { return &OutboxRepository{db: db} }

// Append はメッセージを記録する
func (r *OutboxRepository) Append(ctx context.Context, tx transaction.Tx, msg *outbox.Message) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	// lib/pq は []byte を bytea として送るため jsonb には文字列で渡す
	if err := sqlTx.QueryRowContext(ctx,
		`INSERT INTO outbox_messages (topic, payload, created_at) VALUES ($1, $2, $3) RETURNING id`,
		msg.Topic, string(msg.Payload), msg.CreatedAt,
	).Scan(&msg.ID); err != nil {
		return fmt.Errorf("アウトボックスへの記録に失敗: %w", err)
	}
	return nil
}

// FetchPending は未配信のメッセージを古い順に取得する
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	var rows []outboxRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, topic, payload, created_at, published_at FROM outbox_messages WHERE published_at IS NULL ORDER BY id LIMIT $1`, limit,
	); err != nil {
		return nil, fmt.Errorf("未配信メッセージの取得に失敗: %w", err)
	}
	msgs := make([]*outbox.Message, len(rows))
	for i, row := range rows {
		msgs[i] = &outbox.Message{
			ID: row.ID, Topic: row.Topic, Payload: row.Payload,
			CreatedAt: row.CreatedAt, PublishedAt: row.PublishedAt,
		}
	}
	return msgs, nil
}

// MarkPublished はメッセージを配信済みにする
func (r *OutboxRepository) MarkPublished(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE outbox_messages SET published_at = NOW() WHERE id = $1 AND published_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("配信済みへの更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗: %w", err)
	}
	if rows == 0 {
		return outbox.ErrMessageNotFound
	}
	return nil
}

var _ outbox.Repository = (*OutboxRepository)(nil)
