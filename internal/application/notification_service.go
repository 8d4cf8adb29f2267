package application

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/outbox"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/metrics"
)

// Publisher はメッセージブローカーへの発行を抽象化する
type Publisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}

// NotificationService はアウトボックスに溜まったメッセージをブローカーに中継する
type NotificationService struct {
	outboxRepo outbox.Repository
	publisher  Publisher
	batchSize  int
	metrics    *metrics.Metrics
}

// NewNotificationService は NotificationService を作成する
func NewNotificationService(or outbox.Repository, p Publisher, batchSize int) *NotificationService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &NotificationService{outboxRepo: or, publisher: p, batchSize: batchSize}
}

// WithMetrics はメトリクスを設定する
func (s *NotificationService) WithMetrics(m *metrics.Metrics) *NotificationService {
	s.metrics = m
	return s
}

// RelayPending は未配信メッセージを古い順に発行し、配信済みにした件数を返す
// 発行に失敗した時点で打ち切り、残りは次回に回す
func (s *NotificationService) RelayPending(ctx context.Context) (int, error) {
	msgs, err := s.outboxRepo.FetchPending(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}

	relayed := 0
	for _, msg := range msgs {
		if err := s.publisher.Publish(ctx, msg.Topic, strconv.FormatInt(msg.ID, 10), msg.Payload); err != nil {
			s.metrics.IncOutboxPublished("failed")
			logger.Warn("メッセージ発行に失敗", zap.Int64("message_id", msg.ID), zap.String("topic", msg.Topic), zap.Error(err))
			return relayed, err
		}
		if err := s.outboxRepo.MarkPublished(ctx, msg.ID); err != nil {
			// 発行済みだが記録できなかったメッセージは次回もう一度発行される
			logger.Warn("配信済みへの更新に失敗", zap.Int64("message_id", msg.ID), zap.Error(err))
			return relayed, err
		}
		s.metrics.IncOutboxPublished("published")
		relayed++
	}
	return relayed, nil
}
