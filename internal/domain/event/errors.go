package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound      = errors.New("イベントが見つかりません")
	ErrEventNameRequired  = errors.New("イベント名は必須です")
	ErrVenueIDRequired    = errors.New("会場IDは必須です")
	ErrEventAlreadyExists = errors.New("同じ名前のイベントが既に存在します")
)
