package outbox

import (
	"context"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// Repository はアウトボックスのリポジトリ
type Repository interface {
	// Append はメッセージを記録する（トランザクション必須）
	Append(ctx context.Context, tx transaction.Tx, msg *Message) error

	// FetchPending は未配信のメッセージを古い順に取得する
	FetchPending(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished はメッセージを配信済みにする
	MarkPublished(ctx context.Context, id int64) error
}
