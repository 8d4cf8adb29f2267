// Package policy はイベントごとの座席割り当てルールを定義する
package policy

import (
	"context"
	"errors"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
)

// Kind はルールの種類
type Kind string

const (
	KindEvenCount    Kind = "even_count"
	KindAllTogether  Kind = "all_together"
	KindIsolatedSeat Kind = "isolated_seat"
)

func (k Kind) err() error {
	switch k {
	case KindEvenCount:
		return ErrOddTicketCount
	case KindAllTogether:
		return ErrNotAllTogether
	case KindIsolatedSeat:
		return ErrIsolatedSeat
	default:
		return ErrPolicyViolation
	}
}

// SeatStateLoader は区画内座席の空き状況を読み取る
// 予約処理と同じトランザクションに束縛された実装を渡す
type SeatStateLoader interface {
	LoadSeatStates(ctx context.Context, eventID int64, sectorIDs []int64) ([]*ticket.SeatState, error)
}

// Input はルール評価の入力
// Tickets は座席番号の昇順に並んでいること
type Input struct {
	Event   *event.Event
	Tickets []*ticket.Ticket
	Seats   SeatStateLoader
}

// Validator はひとつのルールを検証する
type Validator interface {
	Validate(ctx context.Context, in Input) error
}

// ValidatorFunc は関数を Validator として扱うためのアダプタ
type ValidatorFunc func(ctx context.Context, in Input) error

// Validate は f(ctx, in) を呼ぶ
func (f ValidatorFunc) Validate(ctx context.Context, in Input) error {
	return f(ctx, in)
}

// Rule はイベントに対する有効化条件とバリデーターの組
type Rule struct {
	Kind      Kind
	Enabled   func(e *event.Event) bool
	Validator Validator
}

// DefaultRules は 偶数 → 連席 → 孤立席回避 の順でルールを返す
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:      KindEvenCount,
			Enabled:   func(e *event.Event) bool { return e.EvenCountRequired },
			Validator: EvenCount(),
		},
		{
			Kind:      KindAllTogether,
			Enabled:   func(e *event.Event) bool { return e.AllTogetherRequired },
			Validator: AllTogether(),
		},
		{
			Kind:      KindIsolatedSeat,
			Enabled:   func(e *event.Event) bool { return e.AvoidIsolatedSeatRequired },
			Validator: AvoidIsolatedSeat(),
		},
	}
}

// Evaluate は有効なルールを順番に評価し、最初の違反で打ち切る
func Evaluate(ctx context.Context, rules []Rule, in Input) error {
	if in.Event == nil {
		return errors.New("ルール評価にはイベントが必要です")
	}
	for _, r := range rules {
		if !r.Enabled(in.Event) {
			continue
		}
		if err := r.Validator.Validate(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
