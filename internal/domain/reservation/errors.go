package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound = errors.New("予約が見つかりません")
	ErrEventIDRequired     = errors.New("イベントIDは必須です")
	ErrNoTickets           = errors.New("予約には1枚以上のチケットが必要です")
	ErrTicketCountMismatch = errors.New("チケット数が予約内容と一致しません")
	ErrTotalCostMismatch   = errors.New("合計金額がチケット価格の合計と一致しません")
	ErrInvalidStatus       = errors.New("不正な予約ステータスです")
)
