package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/config"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
)

// ErrTxRequired はトランザクション必須の操作に tx が渡されなかった場合のエラー
var ErrTxRequired = errors.New("この操作にはトランザクションが必要です")

// NewConnection はPostgreSQLへの接続を作成する
func NewConnection(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}

	// 接続プール設定
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	return db, nil
}

// Ping はデータベース接続を確認する
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

// execer は tx があればトランザクションを、なければ接続プールを返す
func execer(db *sqlx.DB, tx transaction.Tx) sqlx.ExtContext {
	if sqlTx := UnwrapTx(tx); sqlTx != nil {
		return sqlTx
	}
	return db
}

// requireTx はトランザクション必須の操作で sqlx.Tx を取り出す
func requireTx(tx transaction.Tx) (*sqlx.Tx, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return nil, ErrTxRequired
	}
	return sqlTx, nil
}

// isUniqueViolation は一意制約違反かを判定する
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
