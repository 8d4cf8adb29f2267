package venue

import "errors"

// Venue ドメインのエラー定義
var (
	ErrVenueNotFound        = errors.New("会場が見つかりません")
	ErrVenueNameRequired    = errors.New("会場名は必須です")
	ErrSectorNameRequired   = errors.New("区画名は必須です")
	ErrSeatCountMismatch    = errors.New("区画の座席数と座席の数が一致しません")
	ErrInvalidSeatNumber    = errors.New("座席番号は1以上である必要があります")
	ErrDuplicateSeatNumber  = errors.New("区画内で座席番号が重複しています")
	ErrVenueHasReservations = errors.New("予約が存在する会場は削除できません")
	ErrVenueAlreadyExists   = errors.New("同じ名前の会場が既に存在します")
)
