package policy

import "errors"

// 座席割り当てルールのエラー定義
var (
	ErrPolicyViolation = errors.New("座席割り当てルールに違反しています")
	ErrOddTicketCount  = errors.New("チケット枚数は偶数である必要があります")
	ErrNotAllTogether  = errors.New("チケットは同じ区画の連続した座席である必要があります")
	ErrIsolatedSeat    = errors.New("空席が1席だけ残る予約はできません")
)

// ViolationError はどのルールに違反したかを保持する
// errors.Is で ErrPolicyViolation とルールごとのエラーの両方に一致する
type ViolationError struct {
	Kind Kind
	// SeatID は孤立する座席（KindIsolatedSeat の場合のみ）
	SeatID int64
}

func (e *ViolationError) Error() string {
	return e.Kind.err().Error()
}

func (e *ViolationError) Unwrap() []error {
	return []error{ErrPolicyViolation, e.Kind.err()}
}

func violation(kind Kind) error {
	return &ViolationError{Kind: kind}
}
