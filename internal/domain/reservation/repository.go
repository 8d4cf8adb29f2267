package reservation

import (
	"context"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成し ID を設定する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する（チケットは含まない）
	GetByID(ctx context.Context, id int64) (*Reservation, error)

	// CountByEventID はイベントの予約件数を取得する
	CountByEventID(ctx context.Context, eventID int64) (int, error)
}
