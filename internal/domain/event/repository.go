package event

import (
	"context"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, event *Event) error

	// GetByID はIDからイベントを取得する
	// tx が nil の場合はトランザクション外で読み取る
	GetByID(ctx context.Context, tx transaction.Tx, id int64) (*Event, error)

	// GetByName は名前からイベントを取得する
	GetByName(ctx context.Context, name string) (*Event, error)

	// List はイベント一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Event, error)
}
