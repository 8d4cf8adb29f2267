// Package outbox は予約と同じトランザクションで記録し、後から配信するメッセージを扱う
package outbox

import (
	"encoding/json"
	"fmt"
	"time"
)

// TopicReservationCreated は予約作成時に発行されるメッセージのトピック
const TopicReservationCreated = "reservation.created"

// Message は配信待ちのメッセージ
type Message struct {
	ID          int64
	Topic       string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// NewMessage は payload を JSON にしてメッセージを作成する
func NewMessage(topic string, payload any) (*Message, error) {
	if topic == "" {
		return nil, ErrTopicRequired
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ペイロードのエンコードに失敗: %w", err)
	}
	return &Message{
		Topic:     topic,
		Payload:   b,
		CreatedAt: time.Now(),
	}, nil
}

// IsPublished は配信済みかを返す
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// ReservationCreated は reservation.created のペイロード
type ReservationCreated struct {
	ReservationID int64   `json:"reservation_id"`
	EventID       int64   `json:"event_id"`
	UserEmail     string  `json:"user_email"`
	TicketIDs     []int64 `json:"ticket_ids"`
	TotalCost     int64   `json:"total_cost"`
}
