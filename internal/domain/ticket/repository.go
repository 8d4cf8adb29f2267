package ticket

import (
	"context"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// CreateBulk は複数のチケットを一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*Ticket) error

	// GetByIDsForUpdate はIDからチケットを座席情報付きで取得し行ロックする（トランザクション必須）
	// 結果は座席番号の昇順。存在しないIDは結果から除かれる
	GetByIDsForUpdate(ctx context.Context, tx transaction.Tx, ids []int64) ([]*Ticket, error)

	// GetSeatStates は区画内の全座席とイベントのチケット予約状況を取得する（トランザクション必須）
	GetSeatStates(ctx context.Context, tx transaction.Tx, eventID int64, sectorIDs []int64) ([]*SeatState, error)

	// AssignReservation はチケットに予約IDを設定する（トランザクション必須）
	// 未予約のチケットだけを更新し、件数が一致しない場合は ErrTicketAlreadyReserved を返す
	AssignReservation(ctx context.Context, tx transaction.Tx, ids []int64, reservationID int64) error

	// GetByReservationID は予約に紐付くチケットを座席情報付きで取得する
	GetByReservationID(ctx context.Context, reservationID int64) ([]*Ticket, error)

	// CountAvailableByEventID はイベントの未予約チケット数を取得する
	CountAvailableByEventID(ctx context.Context, eventID int64) (int, error)
}
