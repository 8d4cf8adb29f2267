package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
)

// PendingRelayer は未配信メッセージを中継するインターフェース
type PendingRelayer interface {
	RelayPending(ctx context.Context) (int, error)
}

// OutboxRelay はアウトボックスを定期的にブローカーへ中継するワーカー
// 失敗したメッセージは次の周期で再送される
type OutboxRelay struct {
	relayer  PendingRelayer
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewOutboxRelay は新しいワーカーを作成
func NewOutboxRelay(r PendingRelayer, interval time.Duration) *OutboxRelay {
	return &OutboxRelay{
		relayer:  r,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始し、停止するまでブロックする
func (w *OutboxRelay) Start(ctx context.Context) {
	logger.Info("アウトボックス中継開始", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("アウトボックス中継停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("アウトボックス中継停止（シグナル受信）")
			return
		case <-ticker.C:
			w.relay(ctx)
		}
	}
}

// Stop はワーカーを停止し、実行中の中継が終わるまで待つ
func (w *OutboxRelay) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *OutboxRelay) relay(ctx context.Context) {
	log := logger.Get()

	count, err := w.relayer.RelayPending(ctx)
	if err != nil {
		log.Error("アウトボックス中継失敗", zap.Int("relayed", count), zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("アウトボックスを中継", zap.Int("count", count))
	} else {
		log.Debug("未配信メッセージなし")
	}
}
