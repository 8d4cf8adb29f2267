package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound        = errors.New("チケットが見つかりません")
	ErrTicketAlreadyReserved = errors.New("チケットは既に予約されています")
)

// AlreadyReservedError は既に予約済みのチケットIDを保持する
// errors.Is(err, ErrTicketAlreadyReserved) で判定できる
type AlreadyReservedError struct {
	TicketIDs []int64
}

func (e *AlreadyReservedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTicketAlreadyReserved.Error(), joinIDs(e.TicketIDs))
}

func (e *AlreadyReservedError) Unwrap() error {
	return ErrTicketAlreadyReserved
}

// NotFoundError は解決できなかったチケットIDを保持する
type NotFoundError struct {
	TicketIDs []int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTicketNotFound.Error(), joinIDs(e.TicketIDs))
}

func (e *NotFoundError) Unwrap() error {
	return ErrTicketNotFound
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
