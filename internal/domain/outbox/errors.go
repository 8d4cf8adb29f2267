package outbox

import "errors"

var (
	ErrTopicRequired   = errors.New("トピックは必須です")
	ErrMessageNotFound = errors.New("メッセージが見つかりません")
)
