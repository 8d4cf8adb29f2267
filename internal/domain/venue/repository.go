package venue

import (
	"context"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// Repository は会場リポジトリのインターフェース
type Repository interface {
	// Create は会場と区画・座席をまとめて作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, v *Venue) error

	// GetByID はIDから会場を区画・座席付きで取得する
	GetByID(ctx context.Context, id int64) (*Venue, error)

	// GetByName は名前から会場を区画・座席付きで取得する
	GetByName(ctx context.Context, name string) (*Venue, error)

	// LockSectors は区画行を昇順に行ロックする（トランザクション必須）
	LockSectors(ctx context.Context, tx transaction.Tx, sectorIDs []int64) error

	// Delete は会場を削除する
	// イベント・チケット・座席・区画を明示的に削除する（スキーマのカスケードには依存しない）
	// 予約が存在する場合は ErrVenueHasReservations を返す
	Delete(ctx context.Context, tx transaction.Tx, id int64) error
}
